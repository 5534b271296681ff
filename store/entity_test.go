package store

import (
	"strings"
	"testing"
	"time"
)

func TestEntityID(t *testing.T) {
	t.Run("NewEntityID generates valid ID", func(t *testing.T) {
		id := NewEntityID(EntityTypeQuote)
		if id.Type != EntityTypeQuote {
			t.Errorf("expected type %s, got %s", EntityTypeQuote, id.Type)
		}
		if id.ID == "" {
			t.Error("expected non-empty ID")
		}
	})

	t.Run("String returns correct format", func(t *testing.T) {
		id := EntityID{Type: EntityTypeOrder, ID: "abc123"}
		expected := "order:abc123"
		if id.String() != expected {
			t.Errorf("expected %s, got %s", expected, id.String())
		}
	})

	t.Run("ParseEntityID parses valid ID", func(t *testing.T) {
		id, err := ParseEntityID("quote:abc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.Type != EntityTypeQuote {
			t.Errorf("expected type %s, got %s", EntityTypeQuote, id.Type)
		}
		if id.ID != "abc123" {
			t.Errorf("expected ID abc123, got %s", id.ID)
		}
	})

	t.Run("ParseEntityID handles all types", func(t *testing.T) {
		tests := []struct {
			input    string
			expected EntityType
		}{
			{"quote:123", EntityTypeQuote},
			{"order:456", EntityTypeOrder},
		}

		for _, tc := range tests {
			id, err := ParseEntityID(tc.input)
			if err != nil {
				t.Errorf("unexpected error for %s: %v", tc.input, err)
				continue
			}
			if id.Type != tc.expected {
				t.Errorf("for %s: expected type %s, got %s", tc.input, tc.expected, id.Type)
			}
		}
	})

	t.Run("ParseEntityID rejects invalid format", func(t *testing.T) {
		invalidIDs := []string{
			"invalid",
			"no-colon",
			"",
			"proposal:123",
		}

		for _, input := range invalidIDs {
			_, err := ParseEntityID(input)
			if err == nil {
				t.Errorf("expected error for %q, got nil", input)
			}
		}
	})

	t.Run("Round trip ID conversion", func(t *testing.T) {
		original := NewEntityID(EntityTypeOrder)
		str := original.String()
		parsed, err := ParseEntityID(str)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed != original {
			t.Errorf("round trip mismatch: %v != %v", parsed, original)
		}
	})
}

func TestNewHumanID(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	id := NewHumanID(QuoteIDPrefix, now)
	if !strings.HasPrefix(id, "QT-20260901-") {
		t.Errorf("unexpected quote ID format: %s", id)
	}

	other := NewHumanID(QuoteIDPrefix, now)
	if id == other {
		t.Errorf("expected unique IDs, got %s twice", id)
	}

	if !strings.HasPrefix(NewHumanID(OrderIDPrefix, now), "ORD-20260901-") {
		t.Error("unexpected order ID format")
	}
}
