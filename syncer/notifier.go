package syncer

import (
	"sync"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
)

// Notifier accumulates attention counters from the event stream: quotes
// newly awaiting review and cancellations. The counters are ephemeral and
// in-memory only; synchronization never touches them, and only an explicit
// Acknowledge resets them.
type Notifier struct {
	mu            sync.Mutex
	pendingQuotes int
	cancellations int
}

// NewNotifier returns a Notifier with zeroed counters.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Observe updates counters from a change event. Unrecognized events are
// ignored.
func (n *Notifier) Observe(ev events.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch ev.Event {
	case events.QuoteCreated:
		n.pendingQuotes++
	case events.QuoteStatusChanged:
		if ev.Status == string(lifecycle.QuoteCancelled) {
			n.cancellations++
		}
	case events.OrderStatusChanged:
		if ev.Status == string(lifecycle.OrderCancelled) {
			n.cancellations++
		}
	}
}

// Counts returns the pending-quote and cancellation counters.
func (n *Notifier) Counts() (pendingQuotes, cancellations int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pendingQuotes, n.cancellations
}

// Acknowledge resets both counters to zero.
func (n *Notifier) Acknowledge() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingQuotes = 0
	n.cancellations = 0
}
