package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
)

// ConnectionState describes the controller's view of the event stream.
type ConnectionState string

const (
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
	StateStopped      ConnectionState = "stopped"
)

// Snapshot is a confirmed, immutable view of the collections. Callers must
// not mutate the entities it holds.
type Snapshot struct {
	Quotes []*lifecycle.Quote
	Orders []*lifecycle.Order
}

// fetchTimeout bounds a single refetch round trip.
const fetchTimeout = 15 * time.Second

// Controller keeps one scope's quotes and orders synchronized with the
// server. It subscribes to the change subjects and answers every event with
// a full refetch; at most one fetch is in flight, and events arriving during
// a fetch coalesce into a single follow-up via a dirty flag.
type Controller struct {
	client   *Client
	nc       *nats.Conn
	scope    Scope
	notifier *Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	snapshot   Snapshot
	confirmed  Snapshot
	fetching   bool
	dirty      bool
	generation uint64
	state      ConnectionState
	onChange   func(Snapshot)
	sub        *nats.Subscription
}

// NewController creates a stopped Controller. The notifier may be nil.
func NewController(client *Client, nc *nats.Conn, scope Scope, notifier *Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		client:   client,
		nc:       nc,
		scope:    scope,
		notifier: notifier,
		logger:   logger,
		state:    StateStopped,
	}
}

// OnChange registers the callback invoked after every confirmed snapshot
// replacement and every optimistic local apply. Must be called before Start.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Start subscribes to the change subjects and performs the initial fetch.
// The subscription is established before the fetch so no event falls into
// the gap between them.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return errors.New("controller already started")
	}
	c.state = StateConnected
	c.mu.Unlock()

	c.nc.SetDisconnectErrHandler(func(_ *nats.Conn, err error) {
		c.mu.Lock()
		if c.state == StateConnected {
			c.state = StateReconnecting
		}
		c.mu.Unlock()
		c.logger.Warn("Event stream disconnected, serving last snapshot", "error", err)
	})
	c.nc.SetReconnectHandler(func(_ *nats.Conn) {
		c.handleReconnect()
	})

	sub, err := c.nc.Subscribe(events.SubjectAll, func(msg *nats.Msg) {
		ev, err := events.Parse(msg.Data)
		if err != nil {
			c.logger.Warn("Dropping malformed change event", "error", err)
			return
		}
		if c.notifier != nil {
			c.notifier.Observe(*ev)
		}
		c.requestRefetch()
	})
	if err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	c.requestRefetch()
	return nil
}

// Stop unsubscribes and invalidates in-flight fetches. Completions belonging
// to an earlier generation are discarded, so a stopped controller's snapshot
// never changes again.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	c.generation++
	c.fetching = false
	c.dirty = false
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warn("Unsubscribe failed", "error", err)
		}
	}
}

// Snapshot returns the current view, including any optimistic local applies
// not yet confirmed by the server.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// ConnectionState reports whether events are flowing or the controller is
// serving a stale snapshot.
func (c *Controller) ConnectionState() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refetch forces a full refresh, subject to the same serialization as
// event-driven refetches.
func (c *Controller) Refetch() {
	c.requestRefetch()
}

// handleReconnect runs when the event stream comes back. The snapshot may
// have missed events while disconnected, so one refetch runs before the
// controller reports connected again.
func (c *Controller) handleReconnect() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("Event stream reconnected, refetching")
	c.requestRefetch()
}

// requestRefetch starts a fetch, or marks the running one dirty so it goes
// around again. This is the only entry point to the fetch loop.
func (c *Controller) requestRefetch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStopped {
		return
	}
	if c.fetching {
		c.dirty = true
		return
	}
	c.fetching = true
	go c.fetchLoop(c.generation)
}

// fetchLoop fetches until no more events arrived mid-fetch. Both collections
// load before either replaces local state, so a snapshot is never half old
// and half new.
func (c *Controller) fetchLoop(gen uint64) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		quotes, qErr := c.client.FetchQuotes(ctx, c.scope)
		orders, oErr := c.client.FetchOrders(ctx, c.scope)
		cancel()

		c.mu.Lock()
		if c.generation != gen {
			c.mu.Unlock()
			return
		}

		var notify func(Snapshot)
		var snap Snapshot
		if qErr != nil || oErr != nil {
			err := qErr
			if err == nil {
				err = oErr
			}
			// The last confirmed snapshot keeps serving; the next event or
			// explicit Refetch tries again.
			c.logger.Warn("Refetch failed, keeping last snapshot", "error", err)
		} else {
			snap = Snapshot{Quotes: quotes, Orders: orders}
			c.snapshot = snap
			c.confirmed = snap
			notify = c.onChange
		}

		if c.dirty {
			c.dirty = false
			c.mu.Unlock()
			if notify != nil {
				notify(snap)
			}
			continue
		}
		c.fetching = false
		c.mu.Unlock()
		if notify != nil {
			notify(snap)
		}
		return
	}
}

// SetQuoteStatus applies a transition optimistically, then reconciles with
// the server. Transitions the local tables already forbid fail without a
// network call. Any mutate failure rolls the view back to the last confirmed
// snapshot; a conflict additionally forces a refetch.
func (c *Controller) SetQuoteStatus(ctx context.Context, id string, to lifecycle.QuoteStatus) error {
	c.mu.Lock()
	idx := -1
	for i, q := range c.snapshot.Quotes {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return &APIError{Status: 404, Code: "NOT_FOUND", Message: "quote not in view"}
	}
	if err := lifecycle.CanTransitionQuote(c.snapshot.Quotes[idx].Status, to, c.client.role); err != nil {
		c.mu.Unlock()
		return err
	}

	// Optimistic apply on a copy; the confirmed snapshot keeps the previous
	// entity for rollback.
	optimistic := *c.snapshot.Quotes[idx]
	optimistic.Status = to
	quotes := make([]*lifecycle.Quote, len(c.snapshot.Quotes))
	copy(quotes, c.snapshot.Quotes)
	quotes[idx] = &optimistic
	c.snapshot = Snapshot{Quotes: quotes, Orders: c.snapshot.Orders}
	notify := c.onChange
	snap := c.snapshot
	c.mu.Unlock()

	if notify != nil {
		notify(snap)
	}

	updated, err := c.client.SetQuoteStatus(ctx, id, to)
	if err != nil {
		// The server's answer is the only thing that can confirm the
		// optimistic status. Any failure restores the confirmed snapshot;
		// a conflict additionally forces a refetch, since it proves the
		// view is stale.
		c.rollback()
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			c.requestRefetch()
		}
		return err
	}

	c.reconcileQuote(updated)
	return nil
}

// rollback restores the last server-confirmed snapshot.
func (c *Controller) rollback() {
	c.mu.Lock()
	c.snapshot = c.confirmed
	notify := c.onChange
	snap := c.snapshot
	c.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

// reconcileQuote replaces the optimistic entity with the server's version.
// The change event for the same mutation also triggers a refetch, which
// supersedes this with a fully confirmed snapshot.
func (c *Controller) reconcileQuote(updated *lifecycle.Quote) {
	c.mu.Lock()
	quotes := make([]*lifecycle.Quote, len(c.snapshot.Quotes))
	copy(quotes, c.snapshot.Quotes)
	for i, q := range quotes {
		if q.ID == updated.ID {
			quotes[i] = updated
			break
		}
	}
	c.snapshot = Snapshot{Quotes: quotes, Orders: c.snapshot.Orders}
	notify := c.onChange
	snap := c.snapshot
	c.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}
