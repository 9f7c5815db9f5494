package memory

import (
	"context"
	"sort"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

type PlayerRepository struct {
	state *state
}

func (r *PlayerRepository) Insert(_ context.Context, _ repositories.SQLExecutor, p *models.QueuePlayer) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	r.state.players[p.ID] = *p
	r.state.notify("queue_players", p.EventID)
	return nil
}

func (r *PlayerRepository) ListUngroupedSolo(_ context.Context, eventID string) ([]models.QueuePlayer, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var out []models.QueuePlayer
	for _, p := range r.state.players {
		if p.EventID == eventID && p.Ungrouped() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedInAt.Before(out[j].CheckedInAt) })
	return out, nil
}

func (r *PlayerRepository) ListByTeams(_ context.Context, teamIDs []string) ([]models.QueuePlayer, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	wanted := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = true
	}

	var out []models.QueuePlayer
	for _, p := range r.state.players {
		if p.TeamID != nil && wanted[*p.TeamID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedInAt.Before(out[j].CheckedInAt) })
	return out, nil
}

func (r *PlayerRepository) AssignTeam(_ context.Context, _ repositories.SQLExecutor, playerIDs []string, teamID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	eventID := ""
	for _, id := range playerIDs {
		p, ok := r.state.players[id]
		if !ok {
			return repositories.ErrPlayerNotFound
		}
		tid := teamID
		p.TeamID = &tid
		r.state.players[id] = p
		eventID = p.EventID
	}
	if eventID != "" {
		r.state.notify("queue_players", eventID)
	}
	return nil
}

func (r *PlayerRepository) UpdateStatusByTeams(_ context.Context, _ repositories.SQLExecutor, teamIDs []string, status models.PlayerStatus) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	wanted := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = true
	}
	eventID := ""
	for id, p := range r.state.players {
		if p.TeamID != nil && wanted[*p.TeamID] {
			p.Status = status
			r.state.players[id] = p
			eventID = p.EventID
		}
	}
	if eventID != "" {
		r.state.notify("queue_players", eventID)
	}
	return nil
}

func (r *PlayerRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	p, ok := r.state.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.state.players, id)
	r.state.notify("queue_players", p.EventID)
	return nil
}

func (r *PlayerRepository) DeleteByTeam(_ context.Context, _ repositories.SQLExecutor, teamID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	eventID := ""
	for id, p := range r.state.players {
		if p.TeamID != nil && *p.TeamID == teamID {
			eventID = p.EventID
			delete(r.state.players, id)
		}
	}
	if eventID != "" {
		r.state.notify("queue_players", eventID)
	}
	return nil
}

func (r *PlayerRepository) DeleteByEvent(_ context.Context, _ repositories.SQLExecutor, eventID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	for id, p := range r.state.players {
		if p.EventID == eventID && p.Status != models.PlayerStatusPlaying {
			delete(r.state.players, id)
		}
	}
	r.state.notify("queue_players", eventID)
	return nil
}
