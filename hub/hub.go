package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dinesync/tablemap/utils"
)

// Topic names, scoped per restaurant. Each message carries exactly one
// entity as JSON; batches are never sent.
func TableTopic(companyID uint) string {
	return fmt.Sprintf("tables/%d", companyID)
}

func NotificationTopic(companyID uint) string {
	return fmt.Sprintf("notifications/%d", companyID)
}

// Message is the wire frame pushed to subscribed clients.
type Message struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Frame is what clients send on the socket to manage their subscriptions.
type Frame struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Topic  string `json:"topic"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // guards writes to conn
	// topics this connection wants
	topics map[string]bool
}

func (cl *client) send(data []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans out topic messages to websocket clients. One hub serves all
// restaurants; scoping happens through topic names.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Register adds a connection and returns its id.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = &client{conn: conn, topics: make(map[string]bool)}
	return id
}

// Unregister drops the connection and closes it.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		cl.conn.Close()
	}
}

// Subscribe registers interest of a connection in a topic.
func (h *Hub) Subscribe(id, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[id]; ok {
		cl.topics[topic] = true
	}
}

// Unsubscribe removes interest of a connection in a topic.
func (h *Hub) Unsubscribe(id, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[id]; ok {
		delete(cl.topics, topic)
	}
}

// Publish marshals payload and sends it to every connection subscribed to
// topic. Send failures are logged and the client is left for its read loop
// to reap.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal payload for %s: %v", topic, err)
		return
	}
	frame, err := json.Marshal(Message{Topic: topic, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal frame for %s: %v", topic, err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		if cl.topics[topic] {
			targets = append(targets, cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range targets {
		if err := cl.send(frame); err != nil {
			utils.ErrorLogger.Printf("hub: send on %s: %v", topic, err)
		}
	}
}
