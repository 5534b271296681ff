package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/madan-prog/palletforge/pricing"
)

// settingsKey is the single key under which the rate configuration lives.
const settingsKey = "rates"

// GetSettings returns the current rate configuration, or ErrNotFound if none
// has been stored yet.
func (s *Store) GetSettings(ctx context.Context) (*pricing.RateConfiguration, error) {
	entry, err := s.settings.Get(ctx, settingsKey)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var rates pricing.RateConfiguration
	if err := json.Unmarshal(entry.Value(), &rates); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &rates, nil
}

// PutSettings validates and stores a new rate configuration wholesale.
// Admin-only at the API layer; the store does not know about roles.
func (s *Store) PutSettings(ctx context.Context, rates pricing.RateConfiguration) error {
	if err := pricing.ValidateRates(rates); err != nil {
		return err
	}

	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if _, err := s.settings.Put(ctx, settingsKey, data); err != nil {
		return fmt.Errorf("store settings: %w", err)
	}

	return nil
}
