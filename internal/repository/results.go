package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/kv"
)

const resultsPrefix = "results:"

// ResultRepository stores resolved pick outcomes apart from any card.
type ResultRepository struct {
	store kv.Store
}

// NewResultRepository creates a new ResultRepository instance.
func NewResultRepository(store kv.Store) *ResultRepository {
	return &ResultRepository{store: store}
}

func resultKey(date, pickID string) string {
	return resultsPrefix + date + ":" + pickID
}

// Save stores a result for a pick on date.
func (r *ResultRepository) Save(ctx context.Context, date string, res model.StoredResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := r.store.Set(ctx, resultKey(date, res.PickID), raw); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// Get returns the stored result for a pick, if any.
func (r *ResultRepository) Get(ctx context.Context, date, pickID string) (model.StoredResult, bool) {
	var res model.StoredResult
	raw, err := r.store.Get(ctx, resultKey(date, pickID))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn().Err(err).Str("date", date).Str("pick_id", pickID).Msg("Failed to read stored result")
		}
		return res, false
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		log.Warn().Err(err).Str("date", date).Str("pick_id", pickID).Msg("Corrupt stored result ignored")
		return res, false
	}
	return res, true
}

// ForDate returns every stored result for date keyed by pick id.
func (r *ResultRepository) ForDate(ctx context.Context, date string) (map[string]model.StoredResult, error) {
	prefix := resultsPrefix + date + ":"
	keys, err := r.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	out := make(map[string]model.StoredResult, len(keys))
	for _, k := range keys {
		if res, ok := r.Get(ctx, date, strings.TrimPrefix(k, prefix)); ok {
			out[res.PickID] = res
		}
	}
	return out, nil
}
