package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 2 * time.Second

type client struct {
	mu   sync.Mutex // gorilla allows one concurrent writer
	conn *websocket.Conn
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub fans events out to the websocket connections of each profile.
type Hub struct {
	mu       sync.Mutex
	profiles map[string]map[*client]struct{}
	log      *zap.Logger
	now      func() time.Time
}

type Stats struct {
	Profiles    int `json:"profiles"`
	Connections int `json:"connections"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		profiles: make(map[string]map[*client]struct{}),
		log:      log,
		now:      time.Now,
	}
}

func (h *Hub) add(profileID string, ws *websocket.Conn) *client {
	c := &client{conn: ws}
	h.mu.Lock()
	set, ok := h.profiles[profileID]
	if !ok {
		set = make(map[*client]struct{})
		h.profiles[profileID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(profileID string, c *client) {
	h.mu.Lock()
	if set, ok := h.profiles[profileID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.profiles, profileID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Publish sends an event to every connection of profileID. Connections
// that fail to take the write are dropped.
func (h *Hub) Publish(profileID, eventType string, payload any) {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload, At: h.now().UTC()})
	if err != nil {
		h.log.Warn("encode event failed", zap.String("type", eventType), zap.Error(err))
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.profiles[profileID]))
	for c := range h.profiles[profileID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("dropping websocket client", zap.String("profile", profileID), zap.Error(err))
			h.remove(profileID, c)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{Profiles: len(h.profiles)}
	for _, set := range h.profiles {
		s.Connections += len(set)
	}
	return s
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.profiles
	h.profiles = make(map[string]map[*client]struct{})
	h.mu.Unlock()
	for _, set := range all {
		for c := range set {
			_ = c.conn.Close()
		}
	}
}
