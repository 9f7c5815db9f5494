package models

import "time"

// EventPhoto is a gallery photo uploaded by an admin after an event.
type EventPhoto struct {
	ID         string    `json:"id" db:"id"`
	EventID    string    `json:"event_id" db:"event_id"`
	Caption    *string   `json:"caption,omitempty" db:"caption"`
	StorageKey string    `json:"-" db:"storage_key"`
	URL        string    `json:"url" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
