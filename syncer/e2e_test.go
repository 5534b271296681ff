package syncer

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/pricing"
	"github.com/madan-prog/palletforge/rates"
	"github.com/madan-prog/palletforge/server"
	"github.com/madan-prog/palletforge/store"
	"github.com/madan-prog/palletforge/testutil"
)

// TestTwoAdminBroadcast runs the full stack: embedded broker, real store,
// real HTTP server. Admin A approves a quote; admin B's controller picks up
// the approved quote and the derived order without mutating anything.
func TestTwoAdminBroadcast(t *testing.T) {
	nc, js := testutil.StartJetStream(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.NewStore(ctx, js)
	require.NoError(t, err)
	cache, err := rates.NewCache(rates.Default())
	require.NoError(t, err)

	srv := server.New(st, cache, events.NewPublisher(nc, nil), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	adminA := NewClient(ts.URL, lifecycle.RoleAdmin, "admin-a")
	adminB := NewClient(ts.URL, lifecycle.RoleAdmin, "admin-b")
	customer := NewClient(ts.URL, lifecycle.RoleCustomer, "user-1")

	controllerB := NewController(adminB, nc, Scope{Admin: true}, NewNotifier(), nil)
	require.NoError(t, controllerB.Start(ctx))
	defer controllerB.Stop()

	q, err := customer.CreateQuote(ctx, pricing.QuoteSpec{
		PalletType:   pricing.PalletStandard,
		Material:     pricing.MaterialPine,
		Urgency:      pricing.UrgencyStandard,
		Quantity:     15,
		LengthMM:     1200,
		WidthMM:      800,
		HeightMM:     150,
		LoadCapacity: 1000,
	})
	require.NoError(t, err)

	// B learns about the submission from the event stream.
	require.Eventually(t, func() bool {
		snap := controllerB.Snapshot()
		return len(snap.Quotes) == 1 && snap.Quotes[0].ID == q.ID
	}, 10*time.Second, 20*time.Millisecond)

	pending, _ := controllerB.notifier.Counts()
	assert.Equal(t, 1, pending)

	_, err = adminA.SetQuoteStatus(ctx, q.ID, lifecycle.QuoteApproved)
	require.NoError(t, err)

	// B sees the approved quote and the new pending order, purely via
	// refetch. Counters were not reset by synchronization.
	require.Eventually(t, func() bool {
		snap := controllerB.Snapshot()
		if len(snap.Quotes) != 1 || len(snap.Orders) != 1 {
			return false
		}
		return snap.Quotes[0].Status == lifecycle.QuoteApproved &&
			snap.Orders[0].Status == lifecycle.OrderPending &&
			snap.Orders[0].SourceQuoteID == q.QuoteID
	}, 10*time.Second, 20*time.Millisecond)

	pending, _ = controllerB.notifier.Counts()
	assert.Equal(t, 1, pending)
}
