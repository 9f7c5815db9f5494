package memory

import (
	"context"
	"sort"
	"time"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

type EventRepository struct {
	state *state
}

func (r *EventRepository) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	e, ok := r.state.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return &e, nil
}

func (r *EventRepository) List(_ context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var out []models.Event
	for _, e := range r.state.events {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *EventRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.EventStatus, isPaused *bool, updatedAt time.Time) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if err := r.state.writeGate(); err != nil {
		return err
	}
	e, ok := r.state.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.Status = status
	if isPaused != nil {
		e.IsPaused = *isPaused
	}
	e.UpdatedAt = updatedAt
	r.state.events[id] = e

	r.state.notify("events", id)
	return nil
}
