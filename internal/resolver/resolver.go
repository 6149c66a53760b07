// Package resolver grades pending picks against final game results.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/card"
	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/provider"
)

// ErrNoSlate is returned when a card is resolved without its slate.
var ErrNoSlate = errors.New("no slate to resolve card against")

// Scoreboard is the cached game source.
type Scoreboard interface {
	Fetch(ctx context.Context, sport model.Sport, date string) provider.Snapshot
}

// ResultStore keeps resolved outcomes so settled games are not fetched again.
type ResultStore interface {
	ForDate(ctx context.Context, date string) (map[string]model.StoredResult, error)
	Save(ctx context.Context, date string, res model.StoredResult) error
}

// Report describes one resolution pass.
type Report struct {
	Graded      []int         // pick indexes settled in this pass
	Unavailable []model.Sport // sports with no data this pass
	Stale       bool          // some data came from an expired cache entry
	Pending     int           // picks still awaiting a result
}

// Resolver bridges pending picks to external results.
type Resolver struct {
	scores  Scoreboard
	results ResultStore
	now     func() time.Time
}

// New creates a Resolver. results may be nil.
func New(scores Scoreboard, results ResultStore) *Resolver {
	return &Resolver{scores: scores, results: results, now: time.Now}
}

// WithClock overrides the resolution timestamp source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve grades every pending pick on c whose game is final. Terminal picks
// are never touched. A sport that cannot be fetched is skipped and its picks
// stay pending.
func (r *Resolver) Resolve(ctx context.Context, c *model.DailyCard, slate *model.Slate) (Report, error) {
	var rep Report
	if !c.Submitted {
		return rep, card.ErrNotSubmitted
	}
	if slate == nil {
		return rep, ErrNoSlate
	}
	if len(c.Picks) != len(slate.Picks) {
		return rep, card.ErrSlateMismatch
	}

	pending := card.PendingIndexes(c)
	if len(pending) == 0 {
		return rep, nil
	}

	// Stored outcomes first.
	stored := r.stored(ctx, c.Date)
	bySport := make(map[model.Sport][]int)
	var sports []model.Sport
	for _, idx := range pending {
		sp := slate.Picks[idx]
		if applyStored(c, idx, stored[sp.ID]) {
			rep.Graded = append(rep.Graded, idx)
			continue
		}
		if _, ok := bySport[sp.Sport]; !ok {
			sports = append(sports, sp.Sport)
		}
		bySport[sp.Sport] = append(bySport[sp.Sport], idx)
	}

	for _, sport := range sports {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		snap := r.scores.Fetch(ctx, sport, c.Date)
		if !snap.Available {
			log.Warn().Str("sport", string(sport)).Str("date", c.Date).Msg("No scoreboard data, picks stay pending")
			rep.Unavailable = append(rep.Unavailable, sport)
			continue
		}
		rep.Stale = rep.Stale || snap.Stale

		for _, idx := range bySport[sport] {
			sp := slate.Picks[idx]
			game, ok := MatchGame(sp, snap.Games)
			if !ok || game.Status != model.GameFinal {
				continue
			}

			res := GradeGame(sp, game, r.now())
			if err := card.GradeByWinner(c, idx, res.Winner); err != nil {
				log.Debug().Err(err).Int("pick_index", idx).Msg("Pick not graded")
				continue
			}
			rep.Graded = append(rep.Graded, idx)
			r.store(ctx, c.Date, res)
		}
	}

	rep.Pending = len(card.PendingIndexes(c))
	if len(rep.Graded) > 0 {
		log.Info().
			Str("date", c.Date).
			Int("graded", len(rep.Graded)).
			Int("pending", rep.Pending).
			Msg("Picks resolved")
	}
	return rep, nil
}

func (r *Resolver) stored(ctx context.Context, date string) map[string]model.StoredResult {
	if r.results == nil {
		return nil
	}
	out, err := r.results.ForDate(ctx, date)
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("Stored results unavailable")
		return nil
	}
	return out
}

func applyStored(c *model.DailyCard, idx int, res model.StoredResult) bool {
	if res.PickID == "" {
		return false
	}
	winner := res.Winner
	if res.Push {
		winner = model.ChoiceNone
	}
	if err := card.GradeByWinner(c, idx, winner); err != nil {
		log.Debug().Err(err).Int("pick_index", idx).Msg("Stored result not applied")
		return false
	}
	return true
}

func (r *Resolver) store(ctx context.Context, date string, res model.StoredResult) {
	if r.results == nil {
		return
	}
	if err := r.results.Save(ctx, date, res); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("pick_id", res.PickID).Msg("Failed to store result")
	}
}
