package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/traldis/court-queue/db"
	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/realtime"
	"github.com/traldis/court-queue/repositories"
)

// reloadDebounce coalesces bursts of change notifications into one reload.
// Reloads are idempotent, so the window only trades freshness for fewer
// round-trips.
const reloadDebounce = 150 * time.Millisecond

// QueueService is the synchronization layer: it owns the loaded snapshot for
// each event, runs engine commands against it, applies the resulting
// mutation batches to the store, and reloads on every change notification.
// The store is the sole authority; on any write failure local state is
// thrown away and re-fetched, never merged.
type QueueService interface {
	Snapshot(ctx context.Context, eventID string) (queue.Snapshot, error)

	CheckInSolo(ctx context.Context, eventID string, in queue.PlayerInput) (queue.Snapshot, error)
	CheckInTeam(ctx context.Context, eventID, teamName string, players []queue.PlayerInput) (queue.Snapshot, error)
	StartNextMatch(ctx context.Context, eventID string) (queue.Snapshot, error)
	EndCurrentMatch(ctx context.Context, eventID string) (queue.Snapshot, error)
	RemovePlayer(ctx context.Context, eventID, playerID string) (queue.Snapshot, error)
	RemoveTeam(ctx context.Context, eventID, teamID string) (queue.Snapshot, error)
	ClearQueue(ctx context.Context, eventID string) (queue.Snapshot, error)
	SetEventStatus(ctx context.Context, eventID string, status models.EventStatus, isPaused *bool) (queue.Snapshot, error)

	// Run consumes the store's change feed until ctx is done, reloading and
	// broadcasting affected events. Safe to skip when no feed is configured.
	Run(ctx context.Context)
}

type queueService struct {
	engine  *queue.Engine
	events  repositories.EventRepository
	players repositories.PlayerRepository
	teams   repositories.TeamRepository
	matches repositories.MatchRepository
	feed    db.ChangeFeed
	hub     *realtime.Hub
	logger  *slog.Logger

	// Serializes command application. The original design is a single
	// browser event loop; one writer at a time keeps the engine's
	// read-compute-write window as small as that.
	mu sync.Mutex

	debounceMu sync.Mutex
	debounced  map[string]*time.Timer
}

func NewQueueService(
	engine *queue.Engine,
	events repositories.EventRepository,
	players repositories.PlayerRepository,
	teams repositories.TeamRepository,
	matches repositories.MatchRepository,
	feed db.ChangeFeed,
	hub *realtime.Hub,
	logger *slog.Logger,
) QueueService {
	return &queueService{
		engine:    engine,
		events:    events,
		players:   players,
		teams:     teams,
		matches:   matches,
		feed:      feed,
		hub:       hub,
		logger:    logger,
		debounced: make(map[string]*time.Timer),
	}
}

// Snapshot performs the four-way parallel load: event, solo queue, teams
// queue and current match. Any single failure fails the whole load; a
// partial snapshot is never returned.
func (s *queueService) Snapshot(ctx context.Context, eventID string) (queue.Snapshot, error) {
	var snap queue.Snapshot

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		event, err := s.events.GetByID(gctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("load event: %w", err)
		}
		snap.Event = event
		return nil
	})
	g.Go(func() error {
		solos, err := s.players.ListUngroupedSolo(gctx, eventID)
		if err != nil {
			return fmt.Errorf("load solo queue: %w", err)
		}
		snap.SoloQueue = solos
		return nil
	})
	g.Go(func() error {
		teams, err := s.teams.ListQueue(gctx, eventID)
		if err != nil {
			return fmt.Errorf("load teams queue: %w", err)
		}
		if len(teams) > 0 {
			ids := make([]string, len(teams))
			for i, t := range teams {
				ids[i] = t.ID
			}
			players, err := s.players.ListByTeams(gctx, ids)
			if err != nil {
				return fmt.Errorf("load team players: %w", err)
			}
			byTeam := make(map[string][]models.QueuePlayer)
			for _, p := range players {
				if p.TeamID != nil {
					byTeam[*p.TeamID] = append(byTeam[*p.TeamID], p)
				}
			}
			for i := range teams {
				teams[i].Players = byTeam[teams[i].ID]
			}
		}
		snap.TeamsQueue = teams
		return nil
	})
	g.Go(func() error {
		match, err := s.matches.GetCurrent(gctx, eventID)
		if err != nil {
			return fmt.Errorf("load current match: %w", err)
		}
		snap.CurrentMatch = match
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return queue.Snapshot{}, err
		}
		return queue.Snapshot{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return snap, nil
}

// command loads a fresh snapshot, runs fn against it and applies the
// resulting mutations in order. A failed write surfaces the error after a
// best-effort resynchronizing reload.
func (s *queueService) command(ctx context.Context, eventID string, fn func(queue.Snapshot) (queue.Snapshot, []queue.Mutation, error)) (queue.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Snapshot(ctx, eventID)
	if err != nil {
		return queue.Snapshot{}, err
	}

	next, muts, err := fn(snap)
	if err != nil {
		return queue.Snapshot{}, err
	}

	for _, mut := range muts {
		if err := s.applyMutation(ctx, mut); err != nil {
			s.logger.Error("mutation batch failed, resynchronizing from store",
				slog.String("event_id", eventID),
				slog.String("mutation", fmt.Sprintf("%T", mut)),
				slog.Any("error", err))
			if reloaded, reloadErr := s.Snapshot(ctx, eventID); reloadErr == nil {
				s.broadcast(eventID, reloaded)
			}
			if errors.Is(err, repositories.ErrPlayerPhoneConflict) {
				// A racing check-in won the store's unique index.
				return queue.Snapshot{}, queue.ErrDuplicatePhone
			}
			return queue.Snapshot{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
	}

	s.broadcast(eventID, next)
	return next, nil
}

func (s *queueService) applyMutation(ctx context.Context, mut queue.Mutation) error {
	switch m := mut.(type) {
	case queue.InsertPlayer:
		return s.players.Insert(ctx, nil, &m.Player)
	case queue.InsertTeam:
		return s.teams.Insert(ctx, nil, &m.Team)
	case queue.InsertMatch:
		return s.matches.Insert(ctx, nil, &m.Match)
	case queue.AssignPlayersToTeam:
		return s.players.AssignTeam(ctx, nil, m.PlayerIDs, m.TeamID)
	case queue.SetTeamsStatus:
		return s.teams.UpdateStatus(ctx, nil, m.TeamIDs, m.Status)
	case queue.RequeueTeam:
		return s.teams.Requeue(ctx, nil, m.TeamID, m.Position)
	case queue.SetPlayersStatusByTeams:
		return s.players.UpdateStatusByTeams(ctx, nil, m.TeamIDs, m.Status)
	case queue.FinishMatch:
		return s.matches.Finish(ctx, nil, m.MatchID, m.FinishedAt)
	case queue.DeletePlayer:
		return s.players.Delete(ctx, nil, m.PlayerID)
	case queue.DeletePlayersByTeam:
		return s.players.DeleteByTeam(ctx, nil, m.TeamID)
	case queue.DeleteTeam:
		return s.teams.Delete(ctx, nil, m.TeamID)
	case queue.DeletePlayersByEvent:
		return s.players.DeleteByEvent(ctx, nil, m.EventID)
	case queue.DeleteTeamsByEvent:
		return s.teams.DeleteByEvent(ctx, nil, m.EventID)
	case queue.UpdateEventStatus:
		return s.events.UpdateStatus(ctx, nil, m.EventID, m.Status, m.IsPaused, m.UpdatedAt)
	default:
		return fmt.Errorf("unknown mutation type %T", mut)
	}
}

func (s *queueService) CheckInSolo(ctx context.Context, eventID string, in queue.PlayerInput) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		return s.engine.CheckInSolo(snap, in)
	})
}

func (s *queueService) CheckInTeam(ctx context.Context, eventID, teamName string, players []queue.PlayerInput) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		return s.engine.CheckInTeam(snap, teamName, players)
	})
}

func (s *queueService) StartNextMatch(ctx context.Context, eventID string) (queue.Snapshot, error) {
	return s.command(ctx, eventID, s.engine.StartNextMatch)
}

func (s *queueService) EndCurrentMatch(ctx context.Context, eventID string) (queue.Snapshot, error) {
	return s.command(ctx, eventID, s.engine.EndCurrentMatch)
}

func (s *queueService) RemovePlayer(ctx context.Context, eventID, playerID string) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		return s.engine.RemovePlayer(snap, playerID)
	})
}

func (s *queueService) RemoveTeam(ctx context.Context, eventID, teamID string) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		return s.engine.RemoveTeam(snap, teamID)
	})
}

func (s *queueService) ClearQueue(ctx context.Context, eventID string) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		if snap.CurrentMatch != nil && snap.CurrentMatch.Status == models.MatchStatusInProgress {
			// Kept from the original behavior: clearing does not cancel the
			// running match. Worth a trace when an operator does it anyway.
			s.logger.Warn("clearing queue while a match is in progress",
				slog.String("event_id", eventID),
				slog.String("match_id", snap.CurrentMatch.ID))
		}
		return s.engine.ClearQueue(snap)
	})
}

func (s *queueService) SetEventStatus(ctx context.Context, eventID string, status models.EventStatus, isPaused *bool) (queue.Snapshot, error) {
	return s.command(ctx, eventID, func(snap queue.Snapshot) (queue.Snapshot, []queue.Mutation, error) {
		return s.engine.SetEventStatus(snap, status, isPaused)
	})
}

func (s *queueService) broadcast(eventID string, snap queue.Snapshot) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToEvent(eventID, realtime.Message{
		Type:    "QUEUE_UPDATED",
		Payload: snapshotPayload(snap),
	})
}

// snapshotPayload shapes a snapshot the way the views consume it.
func snapshotPayload(snap queue.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"event":         snap.Event,
		"solo_queue":    snap.SoloQueue,
		"teams_queue":   snap.TeamsQueue,
		"current_match": snap.CurrentMatch,
	}
}

// Run pumps the change feed. Every notification schedules a debounced reload
// of the named event; the synthetic wildcard emitted after a feed reconnect
// reloads every event that currently has watchers.
func (s *queueService) Run(ctx context.Context) {
	if s.feed == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-s.feed.Changes():
			if !ok {
				return
			}
			if change.Table == "*" || change.EventID == "" {
				if s.hub != nil {
					for _, id := range s.hub.ActiveEventIDs() {
						s.scheduleReload(ctx, id)
					}
				}
				continue
			}
			s.scheduleReload(ctx, change.EventID)
		}
	}
}

func (s *queueService) scheduleReload(ctx context.Context, eventID string) {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if _, pending := s.debounced[eventID]; pending {
		return
	}
	s.debounced[eventID] = time.AfterFunc(reloadDebounce, func() {
		s.debounceMu.Lock()
		delete(s.debounced, eventID)
		s.debounceMu.Unlock()
		s.reload(ctx, eventID)
	})
}

func (s *queueService) reload(ctx context.Context, eventID string) {
	snap, err := s.Snapshot(ctx, eventID)
	if err != nil {
		s.logger.Error("reload after change notification failed",
			slog.String("event_id", eventID), slog.Any("error", err))
		return
	}
	s.broadcast(eventID, snap)
}
