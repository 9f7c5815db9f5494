package queue

import (
	"time"

	"github.com/traldis/court-queue/models"
)

// Mutation is one store write produced by an engine command. The engine never
// touches the store itself: commands return an ordered mutation list and the
// synchronization layer maps each value onto a repository call. If any write
// in the list fails the applier stops and reloads from the store.
type Mutation interface {
	mutation()
}

type InsertPlayer struct {
	Player models.QueuePlayer
}

type InsertTeam struct {
	Team models.Team
}

type InsertMatch struct {
	Match models.Match
}

// AssignPlayersToTeam re-points grouped solo players at their new random team.
type AssignPlayersToTeam struct {
	PlayerIDs []string
	TeamID    string
}

type SetTeamsStatus struct {
	TeamIDs []string
	Status  models.TeamStatus
}

// RequeueTeam puts a team back in the waiting line at the given position.
type RequeueTeam struct {
	TeamID   string
	Position int
}

type SetPlayersStatusByTeams struct {
	TeamIDs []string
	Status  models.PlayerStatus
}

type FinishMatch struct {
	MatchID    string
	FinishedAt time.Time
}

type DeletePlayer struct {
	PlayerID string
}

type DeletePlayersByTeam struct {
	TeamID string
}

type DeleteTeam struct {
	TeamID string
}

// DeletePlayersByEvent and DeleteTeamsByEvent clear the waiting line. Rows
// with a playing status are spared so a running match keeps its teams.
type DeletePlayersByEvent struct {
	EventID string
}

type DeleteTeamsByEvent struct {
	EventID string
}

type UpdateEventStatus struct {
	EventID   string
	Status    models.EventStatus
	IsPaused  *bool
	UpdatedAt time.Time
}

func (InsertPlayer) mutation()            {}
func (InsertTeam) mutation()              {}
func (InsertMatch) mutation()             {}
func (AssignPlayersToTeam) mutation()     {}
func (SetTeamsStatus) mutation()          {}
func (RequeueTeam) mutation()             {}
func (SetPlayersStatusByTeams) mutation() {}
func (FinishMatch) mutation()             {}
func (DeletePlayer) mutation()            {}
func (DeletePlayersByTeam) mutation()     {}
func (DeleteTeam) mutation()              {}
func (DeletePlayersByEvent) mutation()    {}
func (DeleteTeamsByEvent) mutation()      {}
func (UpdateEventStatus) mutation()       {}
