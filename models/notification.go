package models

import "time"

// Notification types delivered on the notifications topic or derived locally.
const (
	NotificationLateArrival        = "LATE_ARRIVAL"
	NotificationTableStatusChanged = "TABLE_STATUS_CHANGED"
)

// Notification is ephemeral per session. The ID is derived deterministically
// from what the notification is about (e.g. "late-<reservationID>") and is
// the sole deduplication key.
type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Action  string    `json:"action,omitempty"`
	Time    time.Time `json:"time"`
	Read    bool      `json:"read"`
}
