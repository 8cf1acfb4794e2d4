package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{ReservationPending, ReservationConfirmed},
		{ReservationPending, ReservationCancelled},
		{ReservationConfirmed, ReservationArrived},
		{ReservationConfirmed, ReservationNoShow},
		{ReservationConfirmed, ReservationCancelled},
		{ReservationArrived, ReservationCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{ReservationPending, ReservationArrived},
		{ReservationArrived, ReservationCancelled},
		{ReservationArrived, ReservationNoShow},
		{ReservationCompleted, ReservationArrived},
		{ReservationCancelled, ReservationConfirmed},
		{ReservationNoShow, ReservationConfirmed},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(ReservationCompleted))
	assert.True(t, IsTerminal(ReservationCancelled))
	assert.True(t, IsTerminal(ReservationNoShow))
	assert.False(t, IsTerminal(ReservationPending))
	assert.False(t, IsTerminal(ReservationConfirmed))
	assert.False(t, IsTerminal(ReservationArrived))
}
