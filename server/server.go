// Package server exposes the quote/order store over HTTP. It is the
// authoritative side of the fetchAll/mutate contract: every mutation is
// validated against the lifecycle transition tables server-side, persisted
// with revision conflict detection, and announced on the event subjects so
// every subscribed client refetches.
package server

import (
	"log/slog"
	"net/http"

	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/rates"
	"github.com/madan-prog/palletforge/store"
)

// maxRequestBodySize limits request body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// Server handles the quotation HTTP API.
type Server struct {
	store   *store.Store
	rates   *rates.Cache
	pub     *events.Publisher
	logger  *slog.Logger
	metrics *metrics
}

// New creates a Server. The publisher may be nil; mutations then go
// unannounced, which only degrades liveness, not correctness.
func New(st *store.Store, rc *rates.Cache, pub *events.Publisher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:   st,
		rates:   rc,
		pub:     pub,
		logger:  logger,
		metrics: newMetrics(),
	}
}

// Handler returns the fully routed HTTP handler, instrumented with request
// metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Quote collection and detail reads.
	mux.HandleFunc("GET /quotes/all", s.handleListQuotes)
	mux.HandleFunc("GET /quotes/user/{id}", s.handleListUserQuotes)
	mux.HandleFunc("GET /quotes/{id}", s.handleGetQuote)

	// Quote create/edit/transition.
	mux.HandleFunc("POST /quotes", s.handleCreateQuote)
	mux.HandleFunc("PUT /quotes/{id}", s.handleEditQuote)
	mux.HandleFunc("PATCH /quotes/{id}/status", s.handleQuoteStatus)
	mux.HandleFunc("DELETE /quotes/{id}", s.handlePurgeQuote)

	// Order reads and transitions.
	mux.HandleFunc("GET /orders/user/{id}", s.handleListUserOrders)
	mux.HandleFunc("GET /admin/orders", s.handleListOrders)
	mux.HandleFunc("PUT /admin/orders/{id}/status", s.handleOrderStatus)
	mux.HandleFunc("POST /admin/orders/{id}/cancel", s.handleOrderCancel)

	// Rate configuration.
	mux.HandleFunc("GET /admin/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /admin/settings", s.handlePutSettings)

	// Per-quote admin notes.
	mux.HandleFunc("GET /admin/quotes/{id}/notes", s.handleGetNote)
	mux.HandleFunc("PUT /admin/quotes/{id}/notes", s.handlePutNote)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.handler())

	return s.metrics.instrument(mux)
}

// Actor headers. Authentication is an outer concern; by the time a request
// reaches this API a gateway has established who is calling.
const (
	headerRole = "X-Actor-Role"
	headerUser = "X-User-ID"
)

func actorRole(r *http.Request) lifecycle.Role {
	if r.Header.Get(headerRole) == string(lifecycle.RoleAdmin) {
		return lifecycle.RoleAdmin
	}
	return lifecycle.RoleCustomer
}

func actorUser(r *http.Request) string {
	return r.Header.Get(headerUser)
}

// requireAdmin writes a 403 and returns false unless the caller is an admin.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if actorRole(r) != lifecycle.RoleAdmin {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return false
	}
	return true
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
