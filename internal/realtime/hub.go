package realtime

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Hub tracks websocket clients per board and fans change events out to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	rooms      map[uint]map[*Client]struct{}
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]struct{}),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// Register adds a client to its board's room.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for the clients of ev.BoardID. It never blocks the
// caller for longer than it takes the hub to accept the event, and drops the
// event once the hub has stopped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

// Run serves registrations and broadcasts until ctx is cancelled. On exit
// every client's send channel is closed so their write pumps stop.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for _, room := range h.rooms {
			for c := range room {
				close(c.send)
			}
		}
		h.rooms = make(map[uint]map[*Client]struct{})
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			room, ok := h.rooms[c.boardID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.boardID] = room
			}
			room[c] = struct{}{}
			h.log.Debug("client joined", zap.Uint("board_id", c.boardID), zap.Uint("user_id", c.userID))
		case c := <-h.unregister:
			h.remove(c)
		case ev := <-h.broadcast:
			h.fanOut(ev)
		}
	}
}

func (h *Hub) remove(c *Client) {
	room, ok := h.rooms[c.boardID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.boardID)
	}
	h.log.Debug("client left", zap.Uint("board_id", c.boardID), zap.Uint("user_id", c.userID))
}

func (h *Hub) fanOut(ev Event) {
	room := h.rooms[ev.BoardID]
	if len(room) == 0 {
		return
	}
	payload, err := json.Marshal(Message{Type: "change", Data: ev})
	if err != nil {
		h.log.Error("marshalling event", zap.Error(err))
		return
	}
	for c := range room {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("client send buffer full, dropping client",
				zap.Uint("board_id", c.boardID), zap.Uint("user_id", c.userID))
			h.remove(c)
		}
	}
}
