// Package syncer keeps a client-side view of quotes and orders live against
// the server. Views never merge event payloads: any change notification
// triggers a full refetch, and the fetched collections replace the local
// snapshot wholesale. Mutations are applied optimistically and reconciled
// with the authoritative server response.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/pricing"
)

// NetworkError wraps transport-level failures. Callers may retry the
// operation; the controller surfaces it without touching the snapshot.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConflictError reports a server-side rejection of a mutation, either a
// revision conflict or an invalid transition raced by another actor. It is
// never retried blindly; the controller rolls back and refetches.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s): %s", e.Code, e.Message)
}

// APIError covers the remaining non-2xx responses (validation failures,
// missing entities).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Scope selects which collections a client fetches: everything (admin
// views) or a single user's quotes and orders.
type Scope struct {
	UserID string
	Admin  bool
}

// Client is the typed REST client for the quotation server. All calls carry
// the actor identity as headers; the server enforces authorization.
type Client struct {
	base   string
	http   *http.Client
	role   lifecycle.Role
	userID string
}

// NewClient creates a Client for the given actor. The base URL must not end
// with a slash.
func NewClient(base string, role lifecycle.Role, userID string) *Client {
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: 15 * time.Second},
		role:   role,
		userID: userID,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Role", string(c.role))
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &NetworkError{Op: method + " " + path, Err: err}
		}
		return nil
	}

	var body2 struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	// A body that fails to decode still maps to a status-shaped error.
	_ = json.NewDecoder(resp.Body).Decode(&body2)

	if resp.StatusCode == http.StatusConflict {
		return &ConflictError{Code: body2.Code, Message: body2.Error}
	}
	return &APIError{Status: resp.StatusCode, Code: body2.Code, Message: body2.Error}
}

// FetchQuotes returns the full quote collection visible to the scope.
func (c *Client) FetchQuotes(ctx context.Context, scope Scope) ([]*lifecycle.Quote, error) {
	path := "/quotes/user/" + url.PathEscape(scope.UserID)
	if scope.Admin {
		path = "/quotes/all"
	}
	var quotes []*lifecycle.Quote
	if err := c.do(ctx, http.MethodGet, path, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// FetchOrders returns the full order collection visible to the scope.
func (c *Client) FetchOrders(ctx context.Context, scope Scope) ([]*lifecycle.Order, error) {
	path := "/orders/user/" + url.PathEscape(scope.UserID)
	if scope.Admin {
		path = "/admin/orders"
	}
	var orders []*lifecycle.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateQuote submits a new specification for pricing and persistence.
func (c *Client) CreateQuote(ctx context.Context, spec pricing.QuoteSpec) (*lifecycle.Quote, error) {
	body := struct {
		UserID string            `json:"user_id"`
		Spec   pricing.QuoteSpec `json:"spec"`
	}{UserID: c.userID, Spec: spec}

	var q lifecycle.Quote
	if err := c.do(ctx, http.MethodPost, "/quotes", body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuote replaces the spec of a pending quote.
func (c *Client) UpdateQuote(ctx context.Context, id string, spec pricing.QuoteSpec) (*lifecycle.Quote, error) {
	var q lifecycle.Quote
	if err := c.do(ctx, http.MethodPut, "/quotes/"+url.PathEscape(id), spec, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// SetQuoteStatus requests a lifecycle transition on the server.
func (c *Client) SetQuoteStatus(ctx context.Context, id string, to lifecycle.QuoteStatus) (*lifecycle.Quote, error) {
	path := fmt.Sprintf("/quotes/%s/status?status=%s", url.PathEscape(id), url.QueryEscape(string(to)))
	var q lifecycle.Quote
	if err := c.do(ctx, http.MethodPatch, path, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// PurgeQuote permanently removes a quote. Admin only.
func (c *Client) PurgeQuote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/quotes/"+url.PathEscape(id), nil, nil)
}

// SetOrderStatus advances an order along the forward path. Admin only.
func (c *Client) SetOrderStatus(ctx context.Context, id string, to lifecycle.OrderStatus) (*lifecycle.Order, error) {
	path := fmt.Sprintf("/admin/orders/%s/status?status=%s", url.PathEscape(id), url.QueryEscape(string(to)))
	var o lifecycle.Order
	if err := c.do(ctx, http.MethodPut, path, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetSettings fetches the current rate configuration. Admin only.
func (c *Client) GetSettings(ctx context.Context) (*pricing.RateConfiguration, error) {
	var rates pricing.RateConfiguration
	if err := c.do(ctx, http.MethodGet, "/admin/settings", nil, &rates); err != nil {
		return nil, err
	}
	return &rates, nil
}

// PutSettings replaces the rate configuration wholesale. Admin only.
func (c *Client) PutSettings(ctx context.Context, rates pricing.RateConfiguration) error {
	return c.do(ctx, http.MethodPut, "/admin/settings", rates, nil)
}

// CancelOrder invokes the explicit administrative cancellation override.
func (c *Client) CancelOrder(ctx context.Context, id string) (*lifecycle.Order, error) {
	var o lifecycle.Order
	if err := c.do(ctx, http.MethodPost, "/admin/orders/"+url.PathEscape(id)+"/cancel", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
