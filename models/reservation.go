package models

import "time"

// Reservation lifecycle states.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationArrived   = "ARRIVED"
	ReservationCompleted = "COMPLETED"
	ReservationCancelled = "CANCELLED"
	ReservationNoShow    = "NO_SHOW"
)

// DefaultDurationMinutes is used when a reservation is created without an
// explicit duration.
const DefaultDurationMinutes = 180

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         uint      `gorm:"not null;index" json:"tableId"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	CompanyID       uint      `gorm:"not null;index" json:"companyId"`
	NumberOfPeople  int       `gorm:"not null" json:"numberOfPeople"`
	ReservationDate time.Time `gorm:"not null" json:"reservationDate"`
	Duration        int       `gorm:"not null;default:180" json:"duration"`
	SpecialRequests string    `gorm:"type:text" json:"specialRequests"`
	Status          string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// transitions maps each non-terminal state to the states it may move to.
// COMPLETED, CANCELLED and NO_SHOW are final.
var transitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationArrived, ReservationNoShow, ReservationCancelled},
	ReservationArrived:   {ReservationCompleted},
}

// CanTransition reports whether a reservation in state from may move to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status permits no further transitions.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
