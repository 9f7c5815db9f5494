package models

import "time"

type TeamType string

const (
	// TeamTypeReady is a pre-formed team submitted at check-in.
	TeamTypeReady TeamType = "team"
	// TeamTypeRandom is a team assembled by the system from five solo players.
	TeamTypeRandom TeamType = "random"
)

type TeamStatus string

const (
	TeamStatusWaiting TeamStatus = "waiting"
	TeamStatusPlaying TeamStatus = "playing"
	TeamStatusPlayed  TeamStatus = "played"
)

// Team is a five-player unit in the rotation queue. Position defines the
// FIFO order among waiting teams; the two smallest positions are the next
// match candidates.
type Team struct {
	ID        string     `json:"id" db:"id"`
	EventID   string     `json:"event_id" db:"event_id"`
	Name      string     `json:"name" db:"name"`
	Type      TeamType   `json:"type" db:"type"`
	Status    TeamStatus `json:"status" db:"status"`
	Position  int        `json:"position" db:"position"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	Players []QueuePlayer `json:"players,omitempty" db:"-"`
}
