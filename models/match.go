package models

import "time"

type MatchStatus string

const (
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
)

// Match pairs the two teams currently on court. At most one in_progress
// match may exist per event; this is application-enforced, not a storage
// constraint.
type Match struct {
	ID         string      `json:"id" db:"id"`
	EventID    string      `json:"event_id" db:"event_id"`
	TeamAID    string      `json:"team_a_id" db:"team_a_id"`
	TeamBID    string      `json:"team_b_id" db:"team_b_id"`
	Status     MatchStatus `json:"status" db:"status"`
	StartedAt  time.Time   `json:"started_at" db:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
