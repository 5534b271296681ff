package server

import (
	"net/http"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/store"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	orders, err := s.store.ListOrders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrdersByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// handleOrderStatus advances an order along the forward path. Cancellation is
// not reachable here; see handleOrderCancel.
func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeOrder)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	target := lifecycle.OrderStatus(r.URL.Query().Get("status"))

	o, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := lifecycle.TransitionOrder(o, target, actorRole(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.UpdateOrder(r.Context(), o); err != nil {
		writeDomainError(w, err)
		return
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.OrderStatusChanged,
		EntityID: o.ID,
		OrderID:  o.OrderID,
		Status:   string(o.Status),
	})

	writeJSON(w, http.StatusOK, o)
}

// handleOrderCancel is the explicit administrative override; it is a
// dedicated endpoint precisely so cancellation can never be expressed as a
// standard status transition.
func (s *Server) handleOrderCancel(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, err := entityIDFromPath(r.PathValue("id"), store.EntityTypeOrder)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	o, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := lifecycle.OverrideCancelOrder(o, actorRole(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.UpdateOrder(r.Context(), o); err != nil {
		writeDomainError(w, err)
		return
	}

	s.publish(r, events.ChangeEvent{
		Event:    events.OrderStatusChanged,
		EntityID: o.ID,
		OrderID:  o.OrderID,
		Status:   string(o.Status),
	})

	writeJSON(w, http.StatusOK, o)
}
