package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madan-prog/palletforge/pricing"
)

func pendingQuote() *Quote {
	return &Quote{
		ID:      "quote:abc",
		QuoteID: "QT-20260901-0001",
		UserID:  "user-1",
		Status:  QuotePending,
		Spec: pricing.QuoteSpec{
			PalletType:   pricing.PalletStandard,
			Material:     pricing.MaterialPine,
			Urgency:      pricing.UrgencyStandard,
			Quantity:     25,
			LengthMM:     1200,
			WidthMM:      800,
			HeightMM:     150,
			LoadCapacity: 1000,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestQuoteTransitionTable(t *testing.T) {
	statuses := []QuoteStatus{QuotePending, QuoteApproved, QuoteRejected, QuoteCancelled}
	roles := []Role{RoleCustomer, RoleAdmin}

	allowed := map[[3]string]bool{
		{"pending", "approved", "admin"}:      true,
		{"pending", "rejected", "admin"}:      true,
		{"pending", "cancelled", "customer"}:  true,
		{"pending", "cancelled", "admin"}:     true,
		{"approved", "cancelled", "customer"}: true,
		{"approved", "cancelled", "admin"}:    true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			for _, role := range roles {
				err := CanTransitionQuote(from, to, role)
				if allowed[[3]string{string(from), string(to), string(role)}] {
					assert.NoError(t, err, "%s -> %s by %s should be allowed", from, to, role)
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s by %s should be rejected", from, to, role)
				}
			}
		}
	}
}

func TestOrderTransitionTable(t *testing.T) {
	statuses := []OrderStatus{OrderPending, OrderApproved, OrderInProduction, OrderDispatched, OrderCancelled}
	roles := []Role{RoleCustomer, RoleAdmin}

	allowed := map[[2]string]bool{
		{"pending", "approved"}:         true,
		{"approved", "in_production"}:   true,
		{"in_production", "dispatched"}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			for _, role := range roles {
				err := CanTransitionOrder(from, to, role)
				if allowed[[2]string{string(from), string(to)}] && role == RoleAdmin {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition,
						"%s -> %s by %s should be rejected", from, to, role)
				}
			}
		}
	}
}

func TestRejectedQuoteCannotBeApproved(t *testing.T) {
	q := pendingQuote()
	require.NoError(t, TransitionQuote(q, QuoteRejected, RoleAdmin))
	assert.Equal(t, QuoteRejected, q.Status)

	err := TransitionQuote(q, QuoteApproved, RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, QuoteRejected, q.Status, "failed transition must not mutate status")
}

func TestCustomerCannotApprove(t *testing.T) {
	q := pendingQuote()
	err := TransitionQuote(q, QuoteApproved, RoleCustomer)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, RoleCustomer, terr.Actor)
}

func TestTransitionRecordsAuditTrail(t *testing.T) {
	q := pendingQuote()
	require.NoError(t, TransitionQuote(q, QuoteApproved, RoleAdmin))
	require.NoError(t, TransitionQuote(q, QuoteCancelled, RoleCustomer))

	require.Len(t, q.StatusChanges, 2)
	assert.Equal(t, "pending", q.StatusChanges[0].From)
	assert.Equal(t, "approved", q.StatusChanges[0].To)
	assert.Equal(t, RoleAdmin, q.StatusChanges[0].Actor)
	assert.Equal(t, "cancelled", q.StatusChanges[1].To)
	assert.Equal(t, RoleCustomer, q.StatusChanges[1].Actor)
}

func TestOrderForwardPathOnly(t *testing.T) {
	o := &Order{Status: OrderPending}
	require.NoError(t, TransitionOrder(o, OrderApproved, RoleAdmin))
	require.NoError(t, TransitionOrder(o, OrderInProduction, RoleAdmin))
	require.NoError(t, TransitionOrder(o, OrderDispatched, RoleAdmin))

	// No backward edges, no skipping.
	assert.ErrorIs(t, TransitionOrder(&Order{Status: OrderPending}, OrderInProduction, RoleAdmin), ErrInvalidTransition)
	assert.ErrorIs(t, TransitionOrder(&Order{Status: OrderDispatched}, OrderInProduction, RoleAdmin), ErrInvalidTransition)
}

func TestOrderCancelledOnlyViaOverride(t *testing.T) {
	t.Run("transition never reaches cancelled", func(t *testing.T) {
		o := &Order{Status: OrderPending}
		assert.ErrorIs(t, TransitionOrder(o, OrderCancelled, RoleAdmin), ErrInvalidTransition)
	})

	t.Run("override requires admin", func(t *testing.T) {
		o := &Order{Status: OrderInProduction}
		assert.ErrorIs(t, OverrideCancelOrder(o, RoleCustomer), ErrInvalidTransition)
		require.NoError(t, OverrideCancelOrder(o, RoleAdmin))
		assert.Equal(t, OrderCancelled, o.Status)
	})

	t.Run("dispatched cannot be cancelled", func(t *testing.T) {
		o := &Order{Status: OrderDispatched}
		assert.ErrorIs(t, OverrideCancelOrder(o, RoleAdmin), ErrInvalidTransition)
	})
}

func TestEditRules(t *testing.T) {
	rates := pricing.RateConfiguration{
		BasePalletCost:       map[pricing.PalletType]pricing.Money{pricing.PalletStandard: 800},
		MinimumOrderQuantity: 1,
	}

	t.Run("pending quote is editable and repriced", func(t *testing.T) {
		q := pendingQuote()
		spec := q.Spec
		spec.Quantity = 30

		require.NoError(t, ApplyEdit(q, spec, rates, RoleCustomer))
		assert.Equal(t, 30, q.Spec.Quantity)
		assert.Equal(t, pricing.Money(24000), q.LastKnownPrice.BaseCost)
		assert.Equal(t, QuotePending, q.Status, "edit must not change status")
	})

	t.Run("editing is a customer operation", func(t *testing.T) {
		q := pendingQuote()
		spec := q.Spec
		spec.Quantity = 30

		assert.False(t, CanEdit(q, RoleAdmin))
		err := ApplyEdit(q, spec, rates, RoleAdmin)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, 25, q.Spec.Quantity, "quote spec untouched")
	})

	t.Run("approved quote is not editable", func(t *testing.T) {
		q := pendingQuote()
		require.NoError(t, TransitionQuote(q, QuoteApproved, RoleAdmin))
		err := ApplyEdit(q, q.Spec, rates, RoleCustomer)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("invalid spec is rejected before applying", func(t *testing.T) {
		q := pendingQuote()
		bad := q.Spec
		bad.Quantity = 0
		err := ApplyEdit(q, bad, rates, RoleCustomer)

		var verr *pricing.ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Equal(t, 25, q.Spec.Quantity, "quote spec untouched")
	})
}

func TestNewOrderFromQuoteSnapshotsByValue(t *testing.T) {
	q := pendingQuote()
	q.LastKnownPrice = pricing.PriceBreakdown{Total: 23188}
	require.NoError(t, TransitionQuote(q, QuoteApproved, RoleAdmin))

	o := NewOrderFromQuote(q)
	assert.Equal(t, OrderPending, o.Status)
	assert.Equal(t, q.QuoteID, o.SourceQuoteID)
	assert.Equal(t, q.UserID, o.UserID)
	assert.Equal(t, pricing.Money(23188), o.Price.Total)

	// Later edits to the quote must not bleed into the order snapshot.
	q.Spec.Quantity = 999
	assert.Equal(t, 25, o.Spec.Quantity)
}
