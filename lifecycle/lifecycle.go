// Package lifecycle defines the quote and order entities and the two state
// machines that govern their status transitions.
//
// A Quote and its derived Order never share a mutable status field: they are
// independent machines, coupled only by the one-time creation event when a
// quote is approved. Every transition is authorized locally against a
// transition table before any network call is made, so illegal edges never
// reach the server.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/madan-prog/palletforge/pricing"
)

// Role identifies the actor requesting a transition.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// QuoteStatus is the state of a quotation request.
type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteApproved  QuoteStatus = "approved"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteCancelled QuoteStatus = "cancelled"
)

// OrderStatus is the state of a fulfillment order. The only forward path is
// pending → approved → in_production → dispatched; cancelled is reachable
// solely through the explicit administrative override, never via Transition.
type OrderStatus string

const (
	OrderPending      OrderStatus = "pending"
	OrderApproved     OrderStatus = "approved"
	OrderInProduction OrderStatus = "in_production"
	OrderDispatched   OrderStatus = "dispatched"
	OrderCancelled    OrderStatus = "cancelled"
)

// StatusChange records one transition in an entity's audit trail.
type StatusChange struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor Role      `json:"actor"`
	At    time.Time `json:"at"`
}

// Quote is a customer's pricing request pending administrative decision.
// LastKnownPrice is cached at submission or edit time and stays authoritative
// for display even if the rate table later changes.
type Quote struct {
	ID        string            `json:"id"`
	QuoteID   string            `json:"quote_id"`
	UserID    string            `json:"user_id"`
	Spec      pricing.QuoteSpec `json:"spec"`
	Status    QuoteStatus       `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	LastKnownPrice pricing.PriceBreakdown `json:"last_known_price"`
	StatusChanges  []StatusChange         `json:"status_changes,omitempty"`

	// Revision is the store revision this copy was read at. Not part of the
	// entity; used for conflict detection on writes.
	Revision uint64 `json:"-"`
}

// Order is the fulfillment record created when a quote is approved. It
// snapshots the quote's spec and price by value so it stays interpretable
// even if the source quote is later purged.
type Order struct {
	ID            string      `json:"id"`
	OrderID       string      `json:"order_id"`
	SourceQuoteID string      `json:"source_quote_id"`
	UserID        string      `json:"user_id"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Spec          pricing.QuoteSpec      `json:"spec"`
	Price         pricing.PriceBreakdown `json:"price"`
	StatusChanges []StatusChange         `json:"status_changes,omitempty"`

	Revision uint64 `json:"-"`
}

// ErrInvalidTransition is the sentinel for any rejected edge or role.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError describes which edge was rejected and for whom.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Actor  Role
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s transition %s -> %s not permitted for %s", e.Entity, e.From, e.To, e.Actor)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type edge struct{ from, to string }

// quoteEdges is the full quote transition table. Edges absent from the map
// are invalid for every role.
var quoteEdges = map[edge][]Role{
	{string(QuotePending), string(QuoteApproved)}:   {RoleAdmin},
	{string(QuotePending), string(QuoteRejected)}:   {RoleAdmin},
	{string(QuotePending), string(QuoteCancelled)}:  {RoleCustomer, RoleAdmin},
	{string(QuoteApproved), string(QuoteCancelled)}: {RoleCustomer, RoleAdmin},
}

// orderEdges is the standard order transition table: strictly forward, no
// skipping, admin only. Cancellation is deliberately absent; see
// OverrideCancelOrder.
var orderEdges = map[edge][]Role{
	{string(OrderPending), string(OrderApproved)}:        {RoleAdmin},
	{string(OrderApproved), string(OrderInProduction)}:   {RoleAdmin},
	{string(OrderInProduction), string(OrderDispatched)}: {RoleAdmin},
}

func authorized(roles []Role, actor Role) bool {
	for _, r := range roles {
		if r == actor {
			return true
		}
	}
	return false
}

// CanTransitionQuote reports whether the edge exists and the actor may take
// it. It never touches the network; callers check it before any mutate call.
func CanTransitionQuote(from, to QuoteStatus, actor Role) error {
	roles, ok := quoteEdges[edge{string(from), string(to)}]
	if !ok || !authorized(roles, actor) {
		return &TransitionError{Entity: "quote", From: string(from), To: string(to), Actor: actor}
	}
	return nil
}

// CanTransitionOrder is the order-machine counterpart of CanTransitionQuote.
func CanTransitionOrder(from, to OrderStatus, actor Role) error {
	roles, ok := orderEdges[edge{string(from), string(to)}]
	if !ok || !authorized(roles, actor) {
		return &TransitionError{Entity: "order", From: string(from), To: string(to), Actor: actor}
	}
	return nil
}

// TransitionQuote applies a validated transition to the quote, recording it
// in the audit trail. The caller owns the side effect of approval (creating
// the order); see NewOrderFromQuote.
func TransitionQuote(q *Quote, to QuoteStatus, actor Role) error {
	if err := CanTransitionQuote(q.Status, to, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	q.StatusChanges = append(q.StatusChanges, StatusChange{
		From:  string(q.Status),
		To:    string(to),
		Actor: actor,
		At:    now,
	})
	q.Status = to
	q.UpdatedAt = now
	return nil
}

// TransitionOrder applies a validated forward transition to the order.
func TransitionOrder(o *Order, to OrderStatus, actor Role) error {
	if err := CanTransitionOrder(o.Status, to, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.StatusChanges = append(o.StatusChanges, StatusChange{
		From:  string(o.Status),
		To:    string(to),
		Actor: actor,
		At:    now,
	})
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// OverrideCancelOrder cancels an order as an explicit administrative
// override. It is not an edge of the standard machine: TransitionOrder can
// never reach cancelled. Dispatched orders cannot be cancelled.
func OverrideCancelOrder(o *Order, actor Role) error {
	if actor != RoleAdmin {
		return &TransitionError{Entity: "order", From: string(o.Status), To: string(OrderCancelled), Actor: actor}
	}
	switch o.Status {
	case OrderPending, OrderApproved, OrderInProduction:
	default:
		return &TransitionError{Entity: "order", From: string(o.Status), To: string(OrderCancelled), Actor: actor}
	}
	now := time.Now().UTC()
	o.StatusChanges = append(o.StatusChanges, StatusChange{
		From:  string(o.Status),
		To:    string(OrderCancelled),
		Actor: actor,
		At:    now,
	})
	o.Status = OrderCancelled
	o.UpdatedAt = now
	return nil
}

// CanEdit reports whether the quote's spec may still be edited. Editing is
// the customer's operation, and only while pending; an approved quote has
// already produced an order snapshot, and editing it would silently
// desynchronize that snapshot. Admins act on quotes through transitions and
// the rate table, never by rewriting a customer's spec.
func CanEdit(q *Quote, actor Role) bool {
	return actor == RoleCustomer && q.Status == QuotePending
}

// ApplyEdit replaces the quote's spec and reprices it against the given
// rates. The status is never changed by an edit.
func ApplyEdit(q *Quote, spec pricing.QuoteSpec, rates pricing.RateConfiguration, actor Role) error {
	if !CanEdit(q, actor) {
		return fmt.Errorf("quote %s is %s: %w", q.QuoteID, q.Status, ErrInvalidTransition)
	}
	if err := pricing.ValidateSpec(spec); err != nil {
		return err
	}
	q.Spec = spec
	q.LastKnownPrice = pricing.Compute(spec, rates)
	q.UpdatedAt = time.Now().UTC()
	return nil
}

// NewOrderFromQuote builds the order created by a quote's approval. IDs are
// assigned by the store; the spec and price are copied by value.
func NewOrderFromQuote(q *Quote) Order {
	now := time.Now().UTC()
	return Order{
		SourceQuoteID: q.QuoteID,
		UserID:        q.UserID,
		Status:        OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Spec:          q.Spec,
		Price:         q.LastKnownPrice,
	}
}
