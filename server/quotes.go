package server

import (
	"net/http"
	"time"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/pricing"
	"github.com/madan-prog/palletforge/store"
)

// createQuoteRequest is the POST /quotes body.
type createQuoteRequest struct {
	UserID string            `json:"user_id"`
	Spec   pricing.QuoteSpec `json:"spec"`
}

// handleCreateQuote validates and prices a submission, persists it pending,
// and announces it.
func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = actorUser(r)
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USER", "user_id required")
		return
	}

	if err := pricing.ValidateSpec(req.Spec); err != nil {
		writeDomainError(w, err)
		return
	}

	q := &lifecycle.Quote{
		UserID:         req.UserID,
		Spec:           req.Spec,
		LastKnownPrice: pricing.Compute(req.Spec, s.rates.Current()),
	}

	if _, err := s.store.CreateQuote(r.Context(), q); err != nil {
		s.logger.Error("Create quote failed", "user", req.UserID, "error", err)
		writeDomainError(w, err)
		return
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.QuoteCreated,
		EntityID: q.ID,
		QuoteID:  q.QuoteID,
		Status:   string(q.Status),
	})

	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeQuote)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	q, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	quotes, err := s.store.ListQuotes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleListUserQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.ListQuotesByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// handleEditQuote replaces the spec of a pending quote and reprices it
// against the current rate snapshot. Status is never changed by an edit.
func (s *Server) handleEditQuote(w http.ResponseWriter, r *http.Request) {
	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeQuote)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var spec pricing.QuoteSpec
	if !decodeBody(w, r, &spec) {
		return
	}

	q, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := lifecycle.ApplyEdit(q, spec, s.rates.Current(), actorRole(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.UpdateQuote(r.Context(), q); err != nil {
		writeDomainError(w, err)
		return
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.QuoteUpdated,
		EntityID: q.ID,
		QuoteID:  q.QuoteID,
		Status:   string(q.Status),
	})

	writeJSON(w, http.StatusOK, q)
}

// handleQuoteStatus applies a lifecycle transition. Approval additionally
// creates the fulfillment order and announces it; the quote write lands
// first so a conflicting admin loses before any order exists.
func (s *Server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeQuote)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	target := lifecycle.QuoteStatus(r.URL.Query().Get("status"))
	role := actorRole(r)

	q, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := lifecycle.TransitionQuote(q, target, role); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.UpdateQuote(r.Context(), q); err != nil {
		writeDomainError(w, err)
		return
	}

	if target == lifecycle.QuoteApproved {
		order := lifecycle.NewOrderFromQuote(q)
		if _, err := s.store.CreateOrder(r.Context(), &order); err != nil {
			// The quote is already approved; surface the failure rather than
			// trying to unwind it. The admin can retry from the orders view.
			s.logger.Error("Order creation after approval failed",
				"quote", q.QuoteID, "error", err)
			writeDomainError(w, err)
			return
		}
		s.publish(r, events.ChangeEvent{
			Event:    events.OrderCreated,
			EntityID: order.ID,
			OrderID:  order.OrderID,
			QuoteID:  q.QuoteID,
			Status:   string(order.Status),
		})
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.QuoteStatusChanged,
		EntityID: q.ID,
		QuoteID:  q.QuoteID,
		Status:   string(q.Status),
	})

	writeJSON(w, http.StatusOK, q)
}

// handlePurgeQuote permanently removes a quote. Admin only; derived orders
// are untouched.
func (s *Server) handlePurgeQuote(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeQuote)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	q, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.PurgeQuote(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.QuotePurged,
		EntityID: q.ID,
		QuoteID:  q.QuoteID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// publish announces a mutation. Failures are logged, not surfaced: the write
// already landed, and subscribers recover on their next reconnect refetch.
func (s *Server) publish(r *http.Request, ev events.ChangeEvent) {
	ev.Actor = string(actorRole(r))
	ev.At = time.Now().UTC()
	if err := s.pub.Publish(r.Context(), ev); err != nil {
		s.logger.Warn("Event publish failed", "event", ev.Event, "error", err)
	}
}
