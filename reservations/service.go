// Package reservations drives the reservation lifecycle from the client:
// PENDING → CONFIRMED → ARRIVED → COMPLETED, with NO_SHOW and CANCELLED as
// the off-ramps. Every transition is a single round-trip; optimistic table
// state is rolled back on rejection.
package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/dinesync/tablemap/client"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/session"
	"github.com/dinesync/tablemap/store"
	"github.com/dinesync/tablemap/utils"
)

// Operating hours for future reservations; the server is the enforcement
// authority, this is a pre-flight check to fail fast on a known-closed slot.
const OpeningHour = 6

// Valid arrivalMinutes choices for a scheduled quick reservation.
var arrivalChoices = map[int]bool{15: true, 30: true, 45: true, 60: true}

type Service struct {
	api    *client.Client
	tables *store.TableStore
	sess   *session.Session
	now    func() time.Time
}

func NewService(api *client.Client, tables *store.TableStore, sess *session.Session) *Service {
	return &Service{api: api, tables: tables, sess: sess, now: time.Now}
}

// QuickRequest describes an immediate or minutes-away reservation of a
// specific table.
type QuickRequest struct {
	TableID         uint
	PartySize       int
	Immediate       bool
	ArrivalMinutes  int
	SpecialRequests string
}

// QuickReserve validates locally, optimistically marks the table RESERVED
// and confirms with the server. On rejection the table reverts to its last
// authoritative value, which may differ from what it showed before the
// attempt if a delta landed in the meantime.
func (s *Service) QuickReserve(ctx context.Context, req QuickRequest) (models.Reservation, error) {
	tbl, ok := s.tables.Get(req.TableID)
	if !ok {
		return models.Reservation{}, &client.ValidationError{Message: "Table not found"}
	}
	if tbl.Status != models.TableAvailable {
		return models.Reservation{}, &client.ValidationError{
			Message: fmt.Sprintf("Table %s is not available", tbl.TableNumber),
		}
	}
	if req.PartySize < 1 || req.PartySize > tbl.Capacity {
		return models.Reservation{}, &client.ValidationError{
			Message: fmt.Sprintf("Party size must be between 1 and %d", tbl.Capacity),
		}
	}
	if !req.Immediate && !arrivalChoices[req.ArrivalMinutes] {
		return models.Reservation{}, &client.ValidationError{
			Message: "Arrival time must be 15, 30, 45 or 60 minutes from now",
		}
	}

	when := s.now()
	if !req.Immediate {
		when = when.Add(time.Duration(req.ArrivalMinutes) * time.Minute)
	}

	s.tables.ApplyLocal(models.StatusDelta(req.TableID, models.TableReserved))

	res, err := s.api.QuickReservation(ctx, client.ReservationRequest{
		CompanyID:       tbl.CompanyID,
		TableID:         req.TableID,
		UserID:          s.sess.UserID,
		NumberOfPeople:  req.PartySize,
		ReservationDate: when,
		Duration:        models.DefaultDurationMinutes,
		SpecialRequests: req.SpecialRequests,
		Status:          models.ReservationConfirmed,
	}, req.Immediate)
	if err != nil {
		s.tables.Revert(req.TableID)
		return models.Reservation{}, err
	}
	return res, nil
}

// FutureRequest describes a future-dated reservation, with or without a
// specific table.
type FutureRequest struct {
	TableID         uint
	PartySize       int
	Date            time.Time
	SpecialRequests string
}

// CreateFuture pre-flights the operating-hours window (06:00-23:59 local)
// and submits. No optimistic table mutation: a future booking does not
// change today's floor plan.
func (s *Service) CreateFuture(ctx context.Context, req FutureRequest) (models.Reservation, error) {
	if req.Date.Hour() < OpeningHour {
		return models.Reservation{}, &client.ValidationError{
			Message: "The restaurant is closed at the requested time. Please pick a time between 06:00 and midnight.",
		}
	}
	if req.Date.Before(s.now()) {
		return models.Reservation{}, &client.ValidationError{Message: "Reservation time must be in the future"}
	}
	if req.PartySize < 1 {
		return models.Reservation{}, &client.ValidationError{Message: "Party size must be at least 1"}
	}

	return s.api.CreateReservation(ctx, client.ReservationRequest{
		CompanyID:       s.sess.CompanyID,
		TableID:         req.TableID,
		UserID:          s.sess.UserID,
		NumberOfPeople:  req.PartySize,
		ReservationDate: req.Date,
		Duration:        models.DefaultDurationMinutes,
		SpecialRequests: req.SpecialRequests,
		Status:          models.ReservationConfirmed,
	})
}

// CheckIn seats a CONFIRMED guest. A retried check-in on an already-ARRIVED
// reservation is a no-op, not an error: the guest is seated either way.
func (s *Service) CheckIn(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	if r.Status == models.ReservationArrived {
		return r, nil
	}
	if !models.CanTransition(r.Status, models.ReservationArrived) {
		return r, &client.ValidationError{
			Message: fmt.Sprintf("Cannot check in a %s reservation", r.Status),
		}
	}
	return s.api.CheckIn(ctx, r.ID)
}

// CheckOut completes an ARRIVED reservation and refetches the full table
// snapshot: checking out frees occupancy, which is more than a single-field
// flip. A failed refetch leaves the store untouched.
func (s *Service) CheckOut(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	if !models.CanTransition(r.Status, models.ReservationCompleted) {
		return r, &client.ValidationError{
			Message: fmt.Sprintf("Cannot check out a %s reservation", r.Status),
		}
	}
	updated, err := s.api.CheckOut(ctx, r.ID)
	if err != nil {
		return r, err
	}

	if tables, err := s.api.TablesByRestaurant(ctx, updated.CompanyID); err != nil {
		utils.ErrorLogger.Printf("reservations: table refresh after check-out: %v", err)
	} else {
		s.tables.LoadSnapshot(tables)
	}
	return updated, nil
}

// NoShow marks a CONFIRMED guest as a no-show.
func (s *Service) NoShow(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	if !models.CanTransition(r.Status, models.ReservationNoShow) {
		return r, &client.ValidationError{
			Message: fmt.Sprintf("Cannot mark a %s reservation as no-show", r.Status),
		}
	}
	return s.api.NoShow(ctx, r.ID)
}

// Extend lengthens the stay of a seated guest. Duration only, no state
// transition.
func (s *Service) Extend(ctx context.Context, r models.Reservation, duration int) (models.Reservation, error) {
	if r.Status != models.ReservationArrived {
		return r, &client.ValidationError{Message: "Only seated reservations can be extended"}
	}
	if duration < 1 {
		return r, &client.ValidationError{Message: "Extension must be at least 1 minute"}
	}
	return s.api.Extend(ctx, r.ID, duration)
}

// CancelIntent is the first half of the two-phase cancel: it validates the
// transition and hands back a token the caller must present to
// ConfirmCancel after the user confirms. No network call happens here.
type CancelIntent struct {
	ReservationID uint
	TableNumber   string
}

func (s *Service) RequestCancel(r models.Reservation) (CancelIntent, error) {
	if !models.CanTransition(r.Status, models.ReservationCancelled) {
		return CancelIntent{}, &client.ValidationError{
			Message: fmt.Sprintf("A %s reservation can no longer be cancelled", r.Status),
		}
	}
	intent := CancelIntent{ReservationID: r.ID}
	if tbl, ok := s.tables.Get(r.TableID); ok {
		intent.TableNumber = tbl.TableNumber
	}
	return intent, nil
}

// ConfirmCancel performs the irreversible server call for a previously
// requested intent.
func (s *Service) ConfirmCancel(ctx context.Context, intent CancelIntent) (models.Reservation, error) {
	return s.api.Cancel(ctx, intent.ReservationID)
}
