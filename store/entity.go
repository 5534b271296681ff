// Package store provides the authoritative quote/order store backed by NATS
// JetStream KV. It is the server-side half of the fetchAll/mutate contract
// consumed by the sync controller.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType represents the type of entity stored in KV.
type EntityType string

const (
	EntityTypeQuote EntityType = "quote"
	EntityTypeOrder EntityType = "order"
)

// Bucket names for each KV bucket the store owns.
const (
	BucketQuotes   = "PALLET_QUOTES"
	BucketOrders   = "PALLET_ORDERS"
	BucketSettings = "PALLET_SETTINGS"
	BucketNotes    = "PALLET_NOTES"
)

// EntityID represents a typed entity identifier.
type EntityID struct {
	Type EntityType
	ID   string
}

// String returns the string representation of the entity ID.
func (e EntityID) String() string {
	return fmt.Sprintf("%s:%s", e.Type, e.ID)
}

// ParseEntityID parses an entity ID string into its components.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return EntityID{}, fmt.Errorf("invalid entity ID format: %s", s)
	}
	entityType := EntityType(parts[0])
	switch entityType {
	case EntityTypeQuote, EntityTypeOrder:
		return EntityID{Type: entityType, ID: parts[1]}, nil
	default:
		return EntityID{}, fmt.Errorf("unknown entity type: %s", parts[0])
	}
}

// NewEntityID generates a new unique entity ID for the given type.
func NewEntityID(t EntityType) EntityID {
	return EntityID{
		Type: t,
		ID:   uuid.New().String(),
	}
}

// Human-readable ID prefixes shown to customers and admins.
const (
	QuoteIDPrefix = "QT"
	OrderIDPrefix = "ORD"
)

// NewHumanID generates a human-readable reference like QT-20260901-7F3A.
// Uniqueness comes from the random suffix; the date part is for people.
func NewHumanID(prefix string, now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}
