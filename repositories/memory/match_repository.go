package memory

import (
	"context"
	"time"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

type MatchRepository struct {
	state *state
}

func (r *MatchRepository) Insert(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	r.state.matches[m.ID] = *m
	r.state.notify("matches", m.EventID)
	return nil
}

func (r *MatchRepository) GetCurrent(_ context.Context, eventID string) (*models.Match, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var current *models.Match
	for _, m := range r.state.matches {
		if m.EventID != eventID || m.Status != models.MatchStatusInProgress {
			continue
		}
		m := m
		if current == nil || m.StartedAt.After(current.StartedAt) {
			current = &m
		}
	}
	return current, nil
}

func (r *MatchRepository) Finish(_ context.Context, _ repositories.SQLExecutor, id string, finishedAt time.Time) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	m, ok := r.state.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusFinished
	m.FinishedAt = &finishedAt
	r.state.matches[id] = m
	r.state.notify("matches", m.EventID)
	return nil
}
