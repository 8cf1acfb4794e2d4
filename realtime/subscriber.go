// Package realtime is the client side of the push channel: one websocket
// connection per subscription, multiplexing the per-restaurant tables and
// notifications topics onto local callbacks. Transport trouble is never
// surfaced to the user; the connection retries in the background and the UI
// keeps working on stale data until it comes back.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

// ReconnectDelay is the fixed pause between connection attempts. No
// backoff: message order is not guaranteed anyway and the merge layer is
// idempotent, so an eager reconnect is harmless.
const ReconnectDelay = 5 * time.Second

type TableDeltaHandler func(models.TableDelta)
type NotificationHandler func(models.Notification)

// Subscriber dials the hub's websocket endpoint.
type Subscriber struct {
	url    string
	dialer *websocket.Dialer
	delay  time.Duration
}

func NewSubscriber(wsURL string) *Subscriber {
	return &Subscriber{
		url:    wsURL,
		dialer: websocket.DefaultDialer,
		delay:  ReconnectDelay,
	}
}

// subscription is the live state of one Subscribe call.
type subscription struct {
	mu     sync.Mutex
	active bool
	conn   *websocket.Conn
}

func (s *subscription) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) setConn(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.conn = conn
	return true
}

func (s *subscription) deactivate() {
	s.mu.Lock()
	already := !s.active
	s.active = false
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if already {
		return // unsubscribe is idempotent
	}
	if conn != nil {
		conn.Close()
	}
}

// Subscribe opens one connection, subscribes to the restaurant's table and
// notification topics and dispatches inbound entities to the callbacks.
// Reconnection is automatic and transparent; the caller never resubscribes.
// The returned function tears the subscription down; no new dispatch begins
// once it returns, though a callback already past the liveness check may
// still complete.
func (s *Subscriber) Subscribe(companyID uint, onDelta TableDeltaHandler, onNotification NotificationHandler) func() {
	sub := &subscription{active: true}
	tableTopic := hub.TableTopic(companyID)
	notifTopic := hub.NotificationTopic(companyID)

	go func() {
		for sub.isActive() {
			conn, _, err := s.dialer.Dial(s.url, nil)
			if err != nil {
				utils.ErrorLogger.Printf("realtime: dial %s: %v", s.url, err)
				time.Sleep(s.delay)
				continue
			}
			if !sub.setConn(conn) {
				conn.Close()
				return
			}

			if err := subscribeTopics(conn, tableTopic, notifTopic); err != nil {
				utils.ErrorLogger.Printf("realtime: subscribe frames: %v", err)
				conn.Close()
				time.Sleep(s.delay)
				continue
			}

			s.readLoop(sub, conn, tableTopic, notifTopic, onDelta, onNotification)

			if sub.isActive() {
				utils.InfoLogger.Printf("realtime: connection lost for company %d, reconnecting", companyID)
				time.Sleep(s.delay)
			}
		}
	}()

	return sub.deactivate
}

func subscribeTopics(conn *websocket.Conn, topics ...string) error {
	for _, topic := range topics {
		if err := conn.WriteJSON(hub.Frame{Action: "subscribe", Topic: topic}); err != nil {
			return err
		}
	}
	return nil
}

// readLoop decodes frames until the connection drops or the subscription is
// torn down. A malformed payload is logged and skipped; it must not kill
// the loop or drop later messages.
func (s *Subscriber) readLoop(sub *subscription, conn *websocket.Conn, tableTopic, notifTopic string, onDelta TableDeltaHandler, onNotification NotificationHandler) {
	for {
		var msg hub.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if !sub.isActive() {
			return // torn down mid-read: drop, never dispatch
		}

		switch msg.Topic {
		case tableTopic:
			var delta models.TableDelta
			if err := json.Unmarshal(msg.Data, &delta); err != nil {
				utils.ErrorLogger.Printf("realtime: bad table payload: %v", err)
				continue
			}
			if onDelta != nil {
				onDelta(delta)
			}
		case notifTopic:
			var notif models.Notification
			if err := json.Unmarshal(msg.Data, &notif); err != nil {
				utils.ErrorLogger.Printf("realtime: bad notification payload: %v", err)
				continue
			}
			if onNotification != nil {
				onNotification(notif)
			}
		default:
			// Frames for topics this subscription never asked for.
			utils.ErrorLogger.Printf("realtime: frame for unexpected topic %q", msg.Topic)
		}
	}
}
