package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/kv"
	"daily-picks-bot/internal/progression"
)

const (
	userStatePrefix    = "user-state:"
	testingStatePrefix = "testing-state:"
)

// StateRepository persists versioned user state. Real and sandbox copies
// live under separate keys.
type StateRepository struct {
	store       kv.Store
	now         func() time.Time
	defaultMode model.ScoringMode
}

// NewStateRepository creates a new StateRepository instance.
func NewStateRepository(store kv.Store) *StateRepository {
	return &StateRepository{store: store, now: time.Now, defaultMode: model.ModeClassic}
}

// WithDefaultMode sets the scoring mode given to new users.
func (r *StateRepository) WithDefaultMode(mode model.ScoringMode) *StateRepository {
	r.defaultMode = mode
	return r
}

func (r *StateRepository) fresh(userID int64) *model.UserState {
	st := model.NewUserState(userID, r.now())
	st.ScoringMode = r.defaultMode
	return st
}

func stateKey(userID int64, sandbox bool) string {
	prefix := userStatePrefix
	if sandbox {
		prefix = testingStatePrefix
	}
	return prefix + strconv.FormatInt(userID, 10)
}

// Load returns the user's state, or a fresh default when it is missing or
// unreadable. A corrupt entry never fails the caller.
func (r *StateRepository) Load(ctx context.Context, userID int64, sandbox bool) (*model.UserState, error) {
	key := stateKey(userID, sandbox)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return r.fresh(userID), nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var st model.UserState
	if err := json.Unmarshal(raw, &st); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Corrupt user state, resetting to default")
		return r.fresh(userID), nil
	}
	st.UserID = userID
	Migrate(&st)
	return &st, nil
}

// Save writes the state.
func (r *StateRepository) Save(ctx context.Context, st *model.UserState, sandbox bool) error {
	st.Version = model.StateVersion
	st.UpdatedAt = r.now()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := r.store.Set(ctx, stateKey(st.UserID, sandbox), raw); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Delete removes the stored state.
func (r *StateRepository) Delete(ctx context.Context, userID int64, sandbox bool) error {
	return r.store.Delete(ctx, stateKey(userID, sandbox))
}

// UserIDs lists users with persisted real state.
func (r *StateRepository) UserIDs(ctx context.Context) ([]int64, error) {
	keys, err := r.store.Keys(ctx, userStatePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(k, userStatePrefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Migrate upgrades st in place to model.StateVersion. It is deterministic
// and safe to run on current state.
//
// v0: unversioned, may lack maps and a scoring mode.
// v1: level stored independently of XP.
func Migrate(st *model.UserState) {
	if st.Version < 1 {
		p := &st.Progression
		if p.Badges == nil {
			p.Badges = make(map[string]time.Time)
		}
		if p.Stats.AllTime.BySport == nil {
			p.Stats.AllTime.BySport = make(map[model.Sport]model.Tally)
		}
		if p.Stats.AllTime.ByMarket == nil {
			p.Stats.AllTime.ByMarket = make(map[model.Market]model.Tally)
		}
		if st.History == nil {
			st.History = []model.HistoryEntry{}
		}
		if st.ScoringMode != model.ModeCompetitive {
			st.ScoringMode = model.ModeClassic
		}
	}
	if st.Version < 2 {
		st.Progression.Level = progression.LevelForXP(st.Progression.XP)
	}
	if st.Card != nil && !validCard(st.Card) {
		log.Warn().Int64("user_id", st.UserID).Str("date", st.Card.Date).Msg("Dropping malformed card")
		st.Card = nil
	}
	st.Version = model.StateVersion
}

func validCard(c *model.DailyCard) bool {
	if c.Date == "" || len(c.Picks) == 0 {
		return false
	}
	if c.LockIndex != nil && (*c.LockIndex < 0 || *c.LockIndex >= len(c.Picks)) {
		return false
	}
	return true
}
