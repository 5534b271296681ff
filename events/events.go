// Package events defines the change notifications broadcast whenever any
// client mutates a quote or order. Delivery is at-least-once at best;
// consumers must tolerate duplicates, reordering, and gaps. The sync
// controller's full-refetch policy makes that safe by construction, so event
// payloads are advisory — they trigger a refetch, they are never merged.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for quote and order change events.
const (
	SubjectQuotes = "pallet.events.quote"
	SubjectOrders = "pallet.events.order"

	// SubjectAll matches every change event; the sync controller subscribes
	// to this one logical topic.
	SubjectAll = "pallet.events.>"
)

// Type discriminates change events.
type Type string

const (
	QuoteCreated       Type = "quote_created"
	QuoteUpdated       Type = "quote_updated"
	QuoteStatusChanged Type = "quote_status_changed"
	QuotePurged        Type = "quote_purged"
	OrderCreated       Type = "order_created"
	OrderStatusChanged Type = "order_status_changed"
)

// ChangeEvent is the wire format published on the event subjects.
type ChangeEvent struct {
	Event    Type      `json:"event"`
	EntityID string    `json:"entity_id"`
	QuoteID  string    `json:"quote_id,omitempty"`
	OrderID  string    `json:"order_id,omitempty"`
	Status   string    `json:"status,omitempty"`
	Actor    string    `json:"actor,omitempty"`
	At       time.Time `json:"at"`
}

// Subject returns the subject this event is published on.
func (e ChangeEvent) Subject() string {
	switch e.Event {
	case OrderCreated, OrderStatusChanged:
		return SubjectOrders
	default:
		return SubjectQuotes
	}
}

// Parse decodes a change event from its wire format.
func Parse(data []byte) (*ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse change event: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("change event missing event type")
	}
	return &ev, nil
}

// Publisher broadcasts change events over NATS.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher creates a Publisher on the given connection.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger}
}

// Publish broadcasts one event. A nil publisher or connection is a no-op so
// callers degrade gracefully when the broker is unavailable.
func (p *Publisher) Publish(ctx context.Context, ev ChangeEvent) error {
	if p == nil || p.nc == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	if err := p.nc.Publish(ev.Subject(), data); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	p.logger.Debug("Published change event",
		"event", ev.Event,
		"entity_id", ev.EntityID,
		"status", ev.Status)
	return nil
}
