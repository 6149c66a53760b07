package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/kv"
)

// ErrSlateNotFound is returned when no slate was generated for a date.
var ErrSlateNotFound = errors.New("slate not found")

// SlateRepository stores one slate per date.
type SlateRepository struct {
	store kv.Store
}

// NewSlateRepository creates a new SlateRepository instance.
func NewSlateRepository(store kv.Store) *SlateRepository {
	return &SlateRepository{store: store}
}

func slateKey(date string) string {
	return "slate:" + date
}

// Get returns the slate for date or ErrSlateNotFound. A corrupt slate
// reads as missing so it gets regenerated.
func (r *SlateRepository) Get(ctx context.Context, date string) (*model.Slate, error) {
	raw, err := r.store.Get(ctx, slateKey(date))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrSlateNotFound
		}
		return nil, fmt.Errorf("failed to load slate: %w", err)
	}

	var slate model.Slate
	if err := json.Unmarshal(raw, &slate); err != nil || len(slate.Picks) == 0 {
		log.Warn().Str("date", date).Msg("Corrupt slate ignored")
		return nil, ErrSlateNotFound
	}
	return &slate, nil
}

// Save stores the slate under its date.
func (r *SlateRepository) Save(ctx context.Context, slate *model.Slate) error {
	raw, err := json.Marshal(slate)
	if err != nil {
		return fmt.Errorf("failed to encode slate: %w", err)
	}
	if err := r.store.Set(ctx, slateKey(slate.Date), raw); err != nil {
		return fmt.Errorf("failed to save slate: %w", err)
	}
	return nil
}
