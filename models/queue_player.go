package models

import "time"

type PlayerType string

const (
	PlayerTypeSolo PlayerType = "solo"
	PlayerTypeTeam PlayerType = "team"
)

type PlayerStatus string

const (
	PlayerStatusWaiting PlayerStatus = "waiting"
	PlayerStatusPlaying PlayerStatus = "playing"
	PlayerStatusPlayed  PlayerStatus = "played"
)

// QueuePlayer is one checked-in attendee. Solo players carry a nil TeamID
// until five of them are grouped into a random team; team players reference
// their team from the moment of check-in.
type QueuePlayer struct {
	ID          string       `json:"id" db:"id"`
	EventID     string       `json:"event_id" db:"event_id"`
	Name        string       `json:"name" db:"name"`
	Phone       string       `json:"phone" db:"phone"`
	Instagram   *string      `json:"instagram,omitempty" db:"instagram"`
	PlayerType  PlayerType   `json:"player_type" db:"player_type"`
	TeamID      *string      `json:"team_id,omitempty" db:"team_id"`
	Status      PlayerStatus `json:"status" db:"status"`
	CheckedInAt time.Time    `json:"checked_in_at" db:"checked_in_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// Ungrouped reports whether the player is a solo still waiting for a team.
func (p *QueuePlayer) Ungrouped() bool {
	return p.PlayerType == PlayerTypeSolo && p.TeamID == nil && p.Status == PlayerStatusWaiting
}
