package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/madan-prog/palletforge/lifecycle"
)

// Store provides entity storage operations backed by NATS JetStream KV.
type Store struct {
	quotes   jetstream.KeyValue
	orders   jetstream.KeyValue
	settings jetstream.KeyValue
	notes    jetstream.KeyValue
}

// NewStore creates a new Store with the given JetStream context.
// It creates the necessary KV buckets if they don't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	quotes, err := getOrCreateBucket(ctx, js, BucketQuotes)
	if err != nil {
		return nil, fmt.Errorf("create quotes bucket: %w", err)
	}

	orders, err := getOrCreateBucket(ctx, js, BucketOrders)
	if err != nil {
		return nil, fmt.Errorf("create orders bucket: %w", err)
	}

	settings, err := getOrCreateBucket(ctx, js, BucketSettings)
	if err != nil {
		return nil, fmt.Errorf("create settings bucket: %w", err)
	}

	notes, err := getOrCreateBucket(ctx, js, BucketNotes)
	if err != nil {
		return nil, fmt.Errorf("create notes bucket: %w", err)
	}

	return &Store{
		quotes:   quotes,
		orders:   orders,
		settings: settings,
		notes:    notes,
	}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Palletforge %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// CreateQuote assigns IDs and timestamps and persists a new quote in pending.
func (s *Store) CreateQuote(ctx context.Context, q *lifecycle.Quote) (EntityID, error) {
	id := NewEntityID(EntityTypeQuote)
	now := time.Now().UTC()
	q.ID = id.String()
	q.QuoteID = NewHumanID(QuoteIDPrefix, now)
	q.Status = lifecycle.QuotePending
	q.CreatedAt = now
	q.UpdatedAt = now

	data, err := json.Marshal(q)
	if err != nil {
		return EntityID{}, fmt.Errorf("marshal quote: %w", err)
	}

	rev, err := s.quotes.Create(ctx, id.ID, data)
	if err != nil {
		return EntityID{}, fmt.Errorf("store quote: %w", err)
	}
	q.Revision = rev

	return id, nil
}

// GetQuote retrieves a quote by ID. The returned quote carries the KV
// revision it was read at, for conflict detection on later writes.
func (s *Store) GetQuote(ctx context.Context, id EntityID) (*lifecycle.Quote, error) {
	if id.Type != EntityTypeQuote {
		return nil, fmt.Errorf("invalid entity type: expected quote, got %s", id.Type)
	}

	entry, err := s.quotes.Get(ctx, id.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}

	var q lifecycle.Quote
	if err := json.Unmarshal(entry.Value(), &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	q.Revision = entry.Revision()

	return &q, nil
}

// UpdateQuote persists a modified quote. The write is rejected with
// ErrConflict if the quote changed since the revision it was read at.
func (s *Store) UpdateQuote(ctx context.Context, q *lifecycle.Quote) error {
	id, err := ParseEntityID(q.ID)
	if err != nil {
		return fmt.Errorf("parse quote ID: %w", err)
	}

	q.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	rev, err := s.quotes.Update(ctx, id.ID, data, q.Revision)
	if err != nil {
		if isWrongRevision(err) {
			return ErrConflict
		}
		return fmt.Errorf("update quote: %w", err)
	}
	q.Revision = rev

	return nil
}

// PurgeQuote permanently removes a quote. Orders derived from it are
// untouched; they snapshot the quote by value.
func (s *Store) PurgeQuote(ctx context.Context, id EntityID) error {
	if id.Type != EntityTypeQuote {
		return fmt.Errorf("invalid entity type: expected quote, got %s", id.Type)
	}
	if err := s.quotes.Purge(ctx, id.ID); err != nil {
		return fmt.Errorf("purge quote: %w", err)
	}
	return nil
}

// ListQuotes returns all quotes, newest first.
func (s *Store) ListQuotes(ctx context.Context) ([]*lifecycle.Quote, error) {
	keys, err := s.quotes.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list quote keys: %w", err)
	}

	quotes := make([]*lifecycle.Quote, 0, len(keys))
	for _, key := range keys {
		entry, err := s.quotes.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var q lifecycle.Quote
		if err := json.Unmarshal(entry.Value(), &q); err != nil {
			continue
		}
		q.Revision = entry.Revision()
		quotes = append(quotes, &q)
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes, nil
}

// ListQuotesByUser returns all quotes owned by the given user, newest first.
func (s *Store) ListQuotesByUser(ctx context.Context, userID string) ([]*lifecycle.Quote, error) {
	all, err := s.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}
	quotes := make([]*lifecycle.Quote, 0, len(all))
	for _, q := range all {
		if q.UserID == userID {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// CreateOrder assigns IDs and persists a new order. Called only as the side
// effect of a quote approval.
func (s *Store) CreateOrder(ctx context.Context, o *lifecycle.Order) (EntityID, error) {
	id := NewEntityID(EntityTypeOrder)
	now := time.Now().UTC()
	o.ID = id.String()
	o.OrderID = NewHumanID(OrderIDPrefix, now)

	data, err := json.Marshal(o)
	if err != nil {
		return EntityID{}, fmt.Errorf("marshal order: %w", err)
	}

	rev, err := s.orders.Create(ctx, id.ID, data)
	if err != nil {
		return EntityID{}, fmt.Errorf("store order: %w", err)
	}
	o.Revision = rev

	return id, nil
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(ctx context.Context, id EntityID) (*lifecycle.Order, error) {
	if id.Type != EntityTypeOrder {
		return nil, fmt.Errorf("invalid entity type: expected order, got %s", id.Type)
	}

	entry, err := s.orders.Get(ctx, id.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	var o lifecycle.Order
	if err := json.Unmarshal(entry.Value(), &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	o.Revision = entry.Revision()

	return &o, nil
}

// UpdateOrder persists a modified order with revision conflict detection.
func (s *Store) UpdateOrder(ctx context.Context, o *lifecycle.Order) error {
	id, err := ParseEntityID(o.ID)
	if err != nil {
		return fmt.Errorf("parse order ID: %w", err)
	}

	o.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	rev, err := s.orders.Update(ctx, id.ID, data, o.Revision)
	if err != nil {
		if isWrongRevision(err) {
			return ErrConflict
		}
		return fmt.Errorf("update order: %w", err)
	}
	o.Revision = rev

	return nil
}

// ListOrders returns all orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]*lifecycle.Order, error) {
	keys, err := s.orders.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list order keys: %w", err)
	}

	orders := make([]*lifecycle.Order, 0, len(keys))
	for _, key := range keys {
		entry, err := s.orders.Get(ctx, key)
		if err != nil {
			continue
		}
		var o lifecycle.Order
		if err := json.Unmarshal(entry.Value(), &o); err != nil {
			continue
		}
		o.Revision = entry.Revision()
		orders = append(orders, &o)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// ListOrdersByUser returns all orders owned by the given user, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]*lifecycle.Order, error) {
	all, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]*lifecycle.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}

// isWrongRevision checks if an error indicates a stale KV revision.
func isWrongRevision(err error) bool {
	return err != nil && strings.Contains(err.Error(), "wrong last sequence")
}
