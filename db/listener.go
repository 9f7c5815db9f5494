package db

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// queueChannel is the NOTIFY channel fired by the row-change triggers in
// schema.sql for events, queue_players, teams and matches.
const queueChannel = "queue_changes"

// Change is one row-change notification. Consumers treat it purely as a
// refresh hint: the payload names which table changed for which event, never
// what changed.
type Change struct {
	Table   string `json:"table"`
	EventID string `json:"event_id"`
}

// ChangeFeed is the store's change-notification stream. The channel closes
// when the feed shuts down.
type ChangeFeed interface {
	Changes() <-chan Change
	Close() error
}

// Listener bridges postgres LISTEN/NOTIFY to a ChangeFeed. Delivery is
// at-least-once from the consumer's point of view: after a connection drop
// pq re-establishes the LISTEN and the listener emits a synthetic wildcard
// change so consumers reload anything they may have missed.
type Listener struct {
	pl      *pq.Listener
	changes chan Change
	done    chan struct{}
	logger  *slog.Logger
}

func NewListener(dsn string, logger *slog.Logger) (*Listener, error) {
	l := &Listener{
		changes: make(chan Change, 64),
		done:    make(chan struct{}),
		logger:  logger,
	}

	l.pl = pq.NewListener(dsn, 2*time.Second, time.Minute, l.onConnEvent)
	if err := l.pl.Listen(queueChannel); err != nil {
		l.pl.Close()
		return nil, err
	}

	go l.run()
	return l, nil
}

func (l *Listener) Changes() <-chan Change { return l.changes }

func (l *Listener) Close() error {
	close(l.done)
	return l.pl.Close()
}

func (l *Listener) run() {
	defer close(l.changes)

	for {
		select {
		case <-l.done:
			return
		case n, ok := <-l.pl.Notify:
			if !ok {
				return
			}
			if n == nil {
				// pq sends nil after a reconnect; anything may have been
				// missed in between.
				l.emit(Change{Table: "*"})
				continue
			}

			var change Change
			if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
				l.logger.Warn("dropping malformed change notification",
					slog.String("payload", n.Extra), slog.Any("error", err))
				continue
			}
			l.emit(change)
		}
	}
}

// emit never blocks: a full buffer means consumers are already behind on
// reloads, and a reload picks up every pending change anyway.
func (l *Listener) emit(change Change) {
	select {
	case l.changes <- change:
	default:
		l.logger.Warn("change feed buffer full, dropping notification",
			slog.String("table", change.Table), slog.String("event_id", change.EventID))
	}
}

func (l *Listener) onConnEvent(ev pq.ListenerEventType, err error) {
	if err != nil {
		l.logger.Error("postgres listener connection event", slog.Int("event", int(ev)), slog.Any("error", err))
	}
}
