// Package notifier derives user-facing alerts from reservation state. A
// fixed-interval poll computes lateness against wall-clock time as a safety
// net independent of push delivery; pushed notifications come in through
// the same Add path. Identity is the sole dedup key, so recomputing the
// same alert never duplicates it.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dinesync/tablemap/client"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

const (
	// DefaultInterval between reservation sweeps.
	DefaultInterval = time.Minute
	// LateThreshold is how far past its reservationDate a CONFIRMED
	// reservation may run before a LATE_ARRIVAL alert fires.
	LateThreshold = 15 * time.Minute
)

type Aggregator struct {
	api       *client.Client
	companyID uint

	mu            sync.Mutex
	notifications []models.Notification
	unread        int
	stopChan      chan struct{}
	stopped       bool

	Interval time.Duration
	now      func() time.Time
}

func New(api *client.Client, companyID uint) *Aggregator {
	return &Aggregator{
		api:       api,
		companyID: companyID,
		stopChan:  make(chan struct{}),
		Interval:  DefaultInterval,
		now:       time.Now,
	}
}

// Start runs the poll loop until Stop.
func (a *Aggregator) Start() {
	go func() {
		ticker := time.NewTicker(a.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.Poll(context.Background())
			case <-a.stopChan:
				return
			}
		}
	}()
}

// Stop tears the poll loop down. Idempotent; no notification is added
// after it returns.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.stopped = true
	close(a.stopChan)
}

// Poll runs one sweep: every CONFIRMED reservation more than LateThreshold
// past its reservationDate yields a late-arrival notification keyed
// "late-<id>". Polling again never re-adds an existing alert.
func (a *Aggregator) Poll(ctx context.Context) {
	reservations, err := a.api.ReservationsByCompany(ctx, a.companyID)
	if err != nil {
		utils.ErrorLogger.Printf("notifier: fetch reservations: %v", err)
		return
	}

	now := a.now()
	for _, r := range reservations {
		if r.Status != models.ReservationConfirmed {
			continue
		}
		if now.Sub(r.ReservationDate) <= LateThreshold {
			continue
		}
		a.Add(models.Notification{
			ID:      fmt.Sprintf("late-%d", r.ID),
			Type:    models.NotificationLateArrival,
			Message: fmt.Sprintf("Party of %d is more than 15 minutes late", r.NumberOfPeople),
			Action:  fmt.Sprintf("Table %d", r.TableID),
			Time:    now,
		})
	}
}

// Add inserts a notification unless one with the same id already exists.
// Returns whether it was added. Push-delivered notifications use this same
// entry point.
func (a *Aggregator) Add(n models.Notification) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	for _, existing := range a.notifications {
		if existing.ID == n.ID {
			return false
		}
	}
	// Newest first, like a dropdown renders them.
	a.notifications = append([]models.Notification{n}, a.notifications...)
	a.unread++
	return true
}

// Notifications returns a copy of the current list, newest first.
func (a *Aggregator) Notifications() []models.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Notification, len(a.notifications))
	copy(out, a.notifications)
	return out
}

// UnreadCount returns how many notifications have not been read.
func (a *Aggregator) UnreadCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unread
}

// MarkAllAsRead flips every notification to read and resets the counter.
// Local state only; read status is ephemeral per session and never sent to
// the server.
func (a *Aggregator) MarkAllAsRead() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.notifications {
		a.notifications[i].Read = true
	}
	a.unread = 0
}
