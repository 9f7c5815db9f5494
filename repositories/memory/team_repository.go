package memory

import (
	"context"
	"sort"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

type TeamRepository struct {
	state *state
}

func (r *TeamRepository) Insert(_ context.Context, _ repositories.SQLExecutor, t *models.Team) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	stored := *t
	stored.Players = nil
	r.state.teams[t.ID] = stored
	r.state.notify("teams", t.EventID)
	return nil
}

func (r *TeamRepository) ListQueue(_ context.Context, eventID string) ([]models.Team, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var out []models.Team
	for _, t := range r.state.teams {
		if t.EventID == eventID && (t.Status == models.TeamStatusWaiting || t.Status == models.TeamStatusPlaying) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *TeamRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, teamIDs []string, status models.TeamStatus) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	eventID := ""
	for _, id := range teamIDs {
		t, ok := r.state.teams[id]
		if !ok {
			return repositories.ErrTeamNotFound
		}
		t.Status = status
		r.state.teams[id] = t
		eventID = t.EventID
	}
	if eventID != "" {
		r.state.notify("teams", eventID)
	}
	return nil
}

func (r *TeamRepository) Requeue(_ context.Context, _ repositories.SQLExecutor, teamID string, position int) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	t, ok := r.state.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Status = models.TeamStatusWaiting
	t.Position = position
	r.state.teams[teamID] = t
	r.state.notify("teams", t.EventID)
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	t, ok := r.state.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.state.teams, id)
	r.state.notify("teams", t.EventID)
	return nil
}

func (r *TeamRepository) DeleteByEvent(_ context.Context, _ repositories.SQLExecutor, eventID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	for id, t := range r.state.teams {
		if t.EventID == eventID && t.Status != models.TeamStatusPlaying {
			delete(r.state.teams, id)
		}
	}
	r.state.notify("teams", eventID)
	return nil
}
