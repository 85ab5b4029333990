package realtime

import "time"

// EventType mirrors the row-change kinds of the change feed, plus the
// celebration raised by subtask completion automation.
type EventType string

const (
	EventInsert    EventType = "INSERT"
	EventUpdate    EventType = "UPDATE"
	EventDelete    EventType = "DELETE"
	EventCelebrate EventType = "CELEBRATE"
)

// Event tells subscribers of a board that a row changed. Clients refetch
// the board view on receipt; the payload carries no row data.
type Event struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	BoardID  uint      `json:"board_id"`
	RecordID uint      `json:"record_id,omitempty"`
	ActorID  uint      `json:"actor_id,omitempty"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
}

// Message is the envelope written to websocket clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
