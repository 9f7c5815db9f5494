package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traldis/court-queue/models"
)

const rosterSize = 5

// IDGenerator hands out identifiers for rows the engine creates.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Engine holds the queue rotation rules for one event. All commands are pure:
// they take the current snapshot and return the resulting snapshot plus the
// ordered store mutations that realize it. The engine never performs I/O, so
// given the same snapshot, clock and id generator every command is
// deterministic.
type Engine struct {
	ids IDGenerator
	now func() time.Time
}

// NewEngine builds an engine with real identity and clock sources. Either
// argument may be nil to take the default.
func NewEngine(ids IDGenerator, now func() time.Time) *Engine {
	if ids == nil {
		ids = uuidGenerator{}
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{ids: ids, now: now}
}

// PlayerInput is one attendee on a check-in form.
type PlayerInput struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Instagram string `json:"instagram,omitempty"`
}

// CheckInSolo adds a single player to the waiting queue, then groups the five
// oldest ungrouped solos into a random team whenever the threshold is reached.
func (e *Engine) CheckInSolo(snap Snapshot, in PlayerInput) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	if next.Event == nil || next.Event.Status != models.EventStatusActive {
		return snap, nil, ErrEventNotActive
	}
	if !next.Event.AcceptsCheckIns() {
		return snap, nil, ErrQueuePaused
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone) == "" {
		return snap, nil, ErrInvalidRoster
	}
	if next.hasWaitingPhone(in.Phone) {
		return snap, nil, ErrDuplicatePhone
	}

	now := e.now()
	player := models.QueuePlayer{
		ID:          e.ids.NewID(),
		EventID:     next.Event.ID,
		Name:        strings.TrimSpace(in.Name),
		Phone:       in.Phone,
		Instagram:   optional(in.Instagram),
		PlayerType:  models.PlayerTypeSolo,
		Status:      models.PlayerStatusWaiting,
		CheckedInAt: now,
		CreatedAt:   now,
	}
	next.SoloQueue = append(next.SoloQueue, player)

	muts := []Mutation{InsertPlayer{Player: player}}
	muts = append(muts, e.formRandomTeams(&next)...)

	return next, muts, nil
}

// formRandomTeams converts every full group of five ungrouped solos, oldest
// first, into a random team. One team per multiple of five; a player is never
// claimed by two teams because grouped players leave SoloQueue immediately.
func (e *Engine) formRandomTeams(next *Snapshot) []Mutation {
	var muts []Mutation
	for len(next.SoloQueue) >= rosterSize {
		group := make([]models.QueuePlayer, rosterSize)
		copy(group, next.SoloQueue[:rosterSize])

		now := e.now()
		team := models.Team{
			ID:        e.ids.NewID(),
			EventID:   next.Event.ID,
			Name:      fmt.Sprintf("Random Team %d", next.randomTeamCount()+1),
			Type:      models.TeamTypeRandom,
			Status:    models.TeamStatusWaiting,
			Position:  next.MaxPosition() + 1,
			CreatedAt: now,
		}

		playerIDs := make([]string, 0, rosterSize)
		for i := range group {
			group[i].TeamID = &team.ID
			playerIDs = append(playerIDs, group[i].ID)
		}
		team.Players = group

		next.SoloQueue = next.SoloQueue[rosterSize:]
		next.TeamsQueue = append(next.TeamsQueue, team)

		muts = append(muts,
			InsertTeam{Team: team},
			AssignPlayersToTeam{PlayerIDs: playerIDs, TeamID: team.ID},
		)
	}
	return muts
}

// CheckInTeam registers a pre-formed team of exactly five players at the back
// of the waiting line.
func (e *Engine) CheckInTeam(snap Snapshot, teamName string, players []PlayerInput) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	if next.Event == nil || next.Event.Status != models.EventStatusActive {
		return snap, nil, ErrEventNotActive
	}
	if !next.Event.AcceptsCheckIns() {
		return snap, nil, ErrQueuePaused
	}
	if strings.TrimSpace(teamName) == "" || len(players) != rosterSize {
		return snap, nil, ErrInvalidRoster
	}
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Phone) == "" {
			return snap, nil, ErrInvalidRoster
		}
	}

	now := e.now()
	team := models.Team{
		ID:        e.ids.NewID(),
		EventID:   next.Event.ID,
		Name:      strings.TrimSpace(teamName),
		Type:      models.TeamTypeReady,
		Status:    models.TeamStatusWaiting,
		Position:  next.MaxPosition() + 1,
		CreatedAt: now,
	}

	muts := []Mutation{InsertTeam{Team: team}}
	for _, in := range players {
		player := models.QueuePlayer{
			ID:          e.ids.NewID(),
			EventID:     next.Event.ID,
			Name:        strings.TrimSpace(in.Name),
			Phone:       in.Phone,
			Instagram:   optional(in.Instagram),
			PlayerType:  models.PlayerTypeTeam,
			TeamID:      &team.ID,
			Status:      models.PlayerStatusWaiting,
			CheckedInAt: now,
			CreatedAt:   now,
		}
		team.Players = append(team.Players, player)
		muts = append(muts, InsertPlayer{Player: player})
	}

	next.TeamsQueue = append(next.TeamsQueue, team)
	return next, muts, nil
}

// StartNextMatch puts the two lowest-position waiting teams on court.
func (e *Engine) StartNextMatch(snap Snapshot) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	if next.Event == nil {
		return snap, nil, ErrEventNotActive
	}
	if next.CurrentMatch != nil && next.CurrentMatch.Status == models.MatchStatusInProgress {
		return snap, nil, ErrMatchInProgress
	}
	waiting := next.WaitingTeams()
	if len(waiting) < 2 {
		return snap, nil, ErrInsufficientTeams
	}

	teamA, teamB := waiting[0], waiting[1]
	now := e.now()
	match := models.Match{
		ID:        e.ids.NewID(),
		EventID:   next.Event.ID,
		TeamAID:   teamA.ID,
		TeamBID:   teamB.ID,
		Status:    models.MatchStatusInProgress,
		StartedAt: now,
		CreatedAt: now,
	}

	ids := []string{teamA.ID, teamB.ID}
	for _, id := range ids {
		i := next.teamIndex(id)
		next.TeamsQueue[i].Status = models.TeamStatusPlaying
		for j := range next.TeamsQueue[i].Players {
			next.TeamsQueue[i].Players[j].Status = models.PlayerStatusPlaying
		}
	}
	next.CurrentMatch = &match

	muts := []Mutation{
		InsertMatch{Match: match},
		SetTeamsStatus{TeamIDs: ids, Status: models.TeamStatusPlaying},
		SetPlayersStatusByTeams{TeamIDs: ids, Status: models.PlayerStatusPlaying},
	}
	return next, muts, nil
}

// EndCurrentMatch finishes the in-progress match and sends both teams to the
// back of the waiting line: team A at max position + 1, team B at + 2, so the
// team listed first re-enters first. Players pass through played before
// returning to waiting, mirroring what the views expect to observe.
func (e *Engine) EndCurrentMatch(snap Snapshot) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	if next.CurrentMatch == nil || next.CurrentMatch.Status != models.MatchStatusInProgress {
		return snap, nil, ErrNoActiveMatch
	}

	match := next.CurrentMatch
	now := e.now()
	maxPos := next.MaxPosition()
	ids := []string{match.TeamAID, match.TeamBID}

	muts := []Mutation{
		FinishMatch{MatchID: match.ID, FinishedAt: now},
		SetTeamsStatus{TeamIDs: ids, Status: models.TeamStatusPlayed},
		SetPlayersStatusByTeams{TeamIDs: ids, Status: models.PlayerStatusPlayed},
		RequeueTeam{TeamID: match.TeamAID, Position: maxPos + 1},
		RequeueTeam{TeamID: match.TeamBID, Position: maxPos + 2},
		SetPlayersStatusByTeams{TeamIDs: ids, Status: models.PlayerStatusWaiting},
	}

	for offset, id := range ids {
		i := next.teamIndex(id)
		if i < 0 {
			continue
		}
		next.TeamsQueue[i].Status = models.TeamStatusWaiting
		next.TeamsQueue[i].Position = maxPos + 1 + offset
		for j := range next.TeamsQueue[i].Players {
			next.TeamsQueue[i].Players[j].Status = models.PlayerStatusWaiting
		}
	}
	next.sortTeams()
	next.CurrentMatch = nil

	return next, muts, nil
}

// RemovePlayer deletes one player from the queue.
func (e *Engine) RemovePlayer(snap Snapshot, playerID string) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	found := false
	for i, p := range next.SoloQueue {
		if p.ID == playerID {
			next.SoloQueue = append(next.SoloQueue[:i], next.SoloQueue[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		for i := range next.TeamsQueue {
			players := next.TeamsQueue[i].Players
			for j, p := range players {
				if p.ID == playerID {
					next.TeamsQueue[i].Players = append(players[:j], players[j+1:]...)
					found = true
					break
				}
			}
		}
	}
	if !found {
		return snap, nil, ErrPlayerNotFound
	}

	return next, []Mutation{DeletePlayer{PlayerID: playerID}}, nil
}

// RemoveTeam deletes a team and every player referencing it. Teams on court
// are locked; the match has to end first.
func (e *Engine) RemoveTeam(snap Snapshot, teamID string) (Snapshot, []Mutation, error) {
	next := snap.Clone()

	i := next.teamIndex(teamID)
	if i < 0 {
		return snap, nil, ErrTeamNotFound
	}
	if next.TeamsQueue[i].Status == models.TeamStatusPlaying {
		return snap, nil, ErrPlayingTeamLocked
	}

	next.TeamsQueue = append(next.TeamsQueue[:i], next.TeamsQueue[i+1:]...)
	muts := []Mutation{
		DeletePlayersByTeam{TeamID: teamID},
		DeleteTeam{TeamID: teamID},
	}
	return next, muts, nil
}

// ClearQueue wipes the waiting line: every solo player and every team not
// currently on court. A running match and both its teams are left alone; the
// operator is expected to end the match first.
func (e *Engine) ClearQueue(snap Snapshot) (Snapshot, []Mutation, error) {
	next := snap.Clone()
	if next.Event == nil {
		return snap, nil, ErrEventNotActive
	}

	next.SoloQueue = nil
	kept := next.TeamsQueue[:0]
	for _, t := range next.TeamsQueue {
		if t.Status == models.TeamStatusPlaying {
			kept = append(kept, t)
		}
	}
	next.TeamsQueue = kept

	muts := []Mutation{
		DeletePlayersByEvent{EventID: next.Event.ID},
		DeleteTeamsByEvent{EventID: next.Event.ID},
	}
	return next, muts, nil
}

// SetEventStatus updates the event's lifecycle fields. No other entity is
// touched.
func (e *Engine) SetEventStatus(snap Snapshot, status models.EventStatus, isPaused *bool) (Snapshot, []Mutation, error) {
	next := snap.Clone()
	if next.Event == nil {
		return snap, nil, ErrEventNotActive
	}

	now := e.now()
	if status == "" {
		// Pause and resume toggle the flag without touching the lifecycle.
		status = next.Event.Status
	}
	next.Event.Status = status
	if isPaused != nil {
		next.Event.IsPaused = *isPaused
	}
	next.Event.UpdatedAt = now

	mut := UpdateEventStatus{
		EventID:   next.Event.ID,
		Status:    status,
		IsPaused:  isPaused,
		UpdatedAt: now,
	}
	return next, []Mutation{mut}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
