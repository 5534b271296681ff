package store

import (
	"context"
	"fmt"
)

// Admin notes are free-text annotations keyed by quote ID. They live in their
// own bucket, outside the quote entity, and never gate any transition.

// GetNote returns the admin note for a quote, or "" if none exists.
func (s *Store) GetNote(ctx context.Context, quoteID string) (string, error) {
	entry, err := s.notes.Get(ctx, quoteID)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get note: %w", err)
	}
	return string(entry.Value()), nil
}

// SetNote stores the admin note for a quote, replacing any previous value.
func (s *Store) SetNote(ctx context.Context, quoteID, note string) error {
	if _, err := s.notes.Put(ctx, quoteID, []byte(note)); err != nil {
		return fmt.Errorf("store note: %w", err)
	}
	return nil
}
