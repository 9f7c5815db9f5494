package models

import "time"

// EventStatus mirrors the event_status ENUM in the database.
type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusActive   EventStatus = "active"
	EventStatusPaused   EventStatus = "paused"
	EventStatusFinished EventStatus = "finished"
)

// Event is a single court session that owns a check-in queue.
type Event struct {
	ID         string      `json:"id" db:"id"`
	Title      string      `json:"title" db:"title"`
	Date       string      `json:"date" db:"date"`
	Time       string      `json:"time" db:"time"`
	Location   string      `json:"location" db:"location"`
	Address    string      `json:"address" db:"address"`
	Status     EventStatus `json:"status" db:"status"`
	IsPaused   bool        `json:"is_paused" db:"is_paused"`
	MaxPlayers int         `json:"max_players" db:"max_players"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// AcceptsCheckIns reports whether the queue is open for new check-ins.
func (e *Event) AcceptsCheckIns() bool {
	return e.Status == EventStatusActive && !e.IsPaused
}
