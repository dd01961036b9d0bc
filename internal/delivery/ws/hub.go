package ws

import (
	"encoding/json"
	"sync"
	"time"

	"CivicLens/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ReportEvent is the payload fanned out to connected listing views. Listeners
// re-query on receipt instead of trusting the payload, so it only carries
// enough to decide whether a refresh is needed.
type ReportEvent struct {
	Kind     string    `json:"kind"`
	ReportID uuid.UUID `json:"report_id"`
	At       time.Time `json:"at"`
}

const (
	EventCreated           = "report_created"
	EventStatusUpdated     = "status_updated"
	EventFlagged           = "flagged"
	EventFlagDeleted       = "flag_deleted"
	EventHidden            = "hidden"
	EventAuthorityAssigned = "authority_assigned"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	log        logger.Log
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

func NewHub(log logger.Log) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("ws client connected", "total", h.count())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debug("ws client disconnected", "total", h.count())
		}
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a report event to every connected client. Slow clients
// are skipped rather than blocking the caller.
func (h *Hub) Publish(kind string, reportID uuid.UUID) {
	data, err := json.Marshal(ReportEvent{Kind: kind, ReportID: reportID, At: time.Now().UTC()})
	if err != nil {
		h.log.ErrorErr("ws: failed to marshal event", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("ws: dropped event for slow client", "kind", kind)
		}
	}
}
