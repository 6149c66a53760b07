// Package service provides business logic implementations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/card"
	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/lock"
	"daily-picks-bot/internal/progression"
	"daily-picks-bot/internal/repository"
	"daily-picks-bot/internal/resolver"
	"daily-picks-bot/internal/scoring"
)

// Common errors for card operations.
var (
	ErrNotInSandbox = errors.New("only available in sandbox mode")
	ErrBusy         = errors.New("another request for this user is in progress")
)

// MaxHistory is how many archived days are kept per user.
const MaxHistory = 90

const lockTimeout = 5 * time.Second

// Simulation odds.
const (
	simPushRate = 0.05
	simWinRate  = 0.50
)

// View is a user's state after an operation.
type View struct {
	State   *model.UserState
	Card    *model.DailyCard
	Slate   *model.Slate
	Sandbox bool

	BadgesAwarded []string
	Report        *resolver.Report
	// Delta and Score are set when this call finalized a card, including
	// an earlier day's card settled at rollover.
	Delta *progression.Delta
	Score *model.ScoreResult
}

// CardService runs the daily card lifecycle for each user.
type CardService struct {
	states   *repository.StateRepository
	slates   *SlateService
	resolver *resolver.Resolver
	engine   *scoring.Engine
	locks    *lock.UserLock
	clock    *Clock
}

// NewCardService creates a new CardService instance.
func NewCardService(
	states *repository.StateRepository,
	slates *SlateService,
	res *resolver.Resolver,
	engine *scoring.Engine,
	locks *lock.UserLock,
	clock *Clock,
) *CardService {
	return &CardService{
		states:   states,
		slates:   slates,
		resolver: res,
		engine:   engine,
		locks:    locks,
		clock:    clock,
	}
}

// session is one locked read-modify-write of a user's active state.
type session struct {
	active    *model.UserState
	slate     *model.Slate
	isSandbox bool
	settled   *View // outcome of an earlier day's card finalized on open
}

func (s *session) sandbox() bool {
	return s.isSandbox
}

// do loads the user's active state, rolls it over to today, runs fn and
// saves the result. fn may leave slate nil when no card is needed.
func (s *CardService) do(ctx context.Context, userID int64, fn func(sess *session, v *View) error) (*View, error) {
	return s.run(ctx, userID, false, fn)
}

// run is do with an option to bypass the sandbox and work on real state.
func (s *CardService) run(ctx context.Context, userID int64, forceReal bool, fn func(sess *session, v *View) error) (*View, error) {
	var view *View
	err := s.locks.WithLockContext(ctx, userID, lockTimeout, func() error {
		sess, err := s.open(ctx, userID, forceReal)
		if err != nil {
			return err
		}

		v := &View{State: sess.active, Sandbox: sess.sandbox(), Slate: sess.slate, Card: sess.active.Card}
		if prev := sess.settled; prev != nil {
			v.Delta, v.Score = prev.Delta, prev.Score
			v.BadgesAwarded = prev.BadgesAwarded
		}
		if err := fn(sess, v); err != nil {
			return err
		}
		v.Card = sess.active.Card

		if err := s.states.Save(ctx, sess.active, sess.sandbox()); err != nil {
			return err
		}
		view = v
		return nil
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return nil, ErrBusy
	}
	return view, err
}

func (s *CardService) open(ctx context.Context, userID int64, forceReal bool) (*session, error) {
	base, err := s.states.Load(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	sess := &session{active: base, isSandbox: base.Sandbox && !forceReal}
	if sess.isSandbox {
		if sess.active, err = s.states.Load(ctx, userID, true); err != nil {
			return nil, err
		}
	}

	today := s.clock.Today()
	s.settleStale(ctx, sess, today)
	s.rollover(sess.active, today)

	slate, err := s.slates.Get(ctx, today)
	switch {
	case err == nil:
		sess.slate = slate
		if sess.active.Card == nil {
			sess.active.Card = card.New(today, slate, progression.SelectChallengeIDs(today))
		} else if err := card.Validate(sess.active.Card, slate); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Str("date", today).Msg("Card does not match slate, recreating")
			sess.active.Card = card.New(today, slate, progression.SelectChallengeIDs(today))
		}
	case errors.Is(err, ErrEmptySlate):
		// No card today; profile and settings still work.
	default:
		return nil, err
	}
	return sess, nil
}

// settleStale gives a submitted card from an earlier day one last
// resolution pass against its own slate before rollover archives it.
func (s *CardService) settleStale(ctx context.Context, sess *session, today string) {
	st := sess.active
	c := st.Card
	if c == nil || c.Date == today || !c.Submitted || c.Graded {
		return
	}
	prev, err := s.slates.Stored(ctx, c.Date)
	if err != nil {
		return
	}
	if _, err := s.resolver.Resolve(ctx, c, prev); err != nil {
		log.Warn().Err(err).Int64("user_id", st.UserID).Str("date", c.Date).Msg("Could not settle previous card")
		return
	}
	settled := &View{}
	if err := s.finalizeIfDone(&session{active: st, slate: prev, isSandbox: sess.isSandbox}, settled); err != nil {
		log.Warn().Err(err).Int64("user_id", st.UserID).Str("date", c.Date).Msg("Could not finalize previous card")
		return
	}
	if settled.Score != nil {
		sess.settled = settled
	}
}

// rollover archives yesterday's card and starts a fresh day.
func (s *CardService) rollover(st *model.UserState, today string) {
	progression.RollWindows(&st.Progression, today)

	c := st.Card
	if c == nil || c.Date == today {
		return
	}
	if c.Submitted && !c.Graded {
		entry := historyEntry(c, nil, nil)
		entry.TotalPoints = scoring.QuickScore(c.Picks, c.LockIndex, st.ScoringMode)
		addHistory(st, entry)
		log.Info().Int64("user_id", st.UserID).Str("date", c.Date).Msg("Archived ungraded card at rollover")
	}
	st.Card = nil
}

// Today returns the user's current card and slate.
func (s *CardService) Today(ctx context.Context, userID int64) (*View, error) {
	return s.do(ctx, userID, func(*session, *View) error { return nil })
}

func requireCard(sess *session) error {
	if sess.slate == nil || sess.active.Card == nil {
		return ErrEmptySlate
	}
	return nil
}

// Select records a choice for one pick.
func (s *CardService) Select(ctx context.Context, userID int64, idx int, choice model.Choice) (*View, error) {
	return s.do(ctx, userID, func(sess *session, v *View) error {
		if err := requireCard(sess); err != nil {
			return err
		}
		if err := card.Select(sess.active.Card, sess.slate, idx, choice, s.clock.Now()); err != nil {
			log.Debug().Err(err).Int64("user_id", userID).Int("pick_index", idx).Msg("Selection rejected")
			return err
		}
		if progression.Award(&sess.active.Progression, progression.BadgeFirstPick, s.clock.Now()) {
			v.BadgesAwarded = append(v.BadgesAwarded, progression.BadgeFirstPick)
		}
		return nil
	})
}

// ToggleLock sets or clears the Lock of the Day on idx.
func (s *CardService) ToggleLock(ctx context.Context, userID int64, idx int) (*View, bool, error) {
	var locked bool
	v, err := s.do(ctx, userID, func(sess *session, _ *View) error {
		if err := requireCard(sess); err != nil {
			return err
		}
		var err error
		locked, err = card.ToggleLock(sess.active.Card, idx)
		return err
	})
	return v, locked, err
}

// Submit locks in the card. A card of only passes finalizes at once.
func (s *CardService) Submit(ctx context.Context, userID int64) (*View, error) {
	return s.do(ctx, userID, func(sess *session, v *View) error {
		if err := requireCard(sess); err != nil {
			return err
		}
		now := s.clock.Now()
		if err := card.Submit(sess.active.Card, now); err != nil {
			return err
		}
		if progression.Award(&sess.active.Progression, progression.BadgeFirstCard, now) {
			v.BadgesAwarded = append(v.BadgesAwarded, progression.BadgeFirstCard)
		}
		log.Info().
			Int64("user_id", userID).
			Str("date", sess.active.Card.Date).
			Bool("sandbox", sess.sandbox()).
			Msg("Card submitted")
		return s.finalizeIfDone(sess, v)
	})
}

// CheckResults grades pending picks and finalizes the card once settled.
// A graded or unsubmitted card is a no-op.
func (s *CardService) CheckResults(ctx context.Context, userID int64) (*View, error) {
	return s.checkResults(ctx, userID, false)
}

func (s *CardService) checkResults(ctx context.Context, userID int64, forceReal bool) (*View, error) {
	return s.run(ctx, userID, forceReal, func(sess *session, v *View) error {
		c := sess.active.Card
		if c == nil || !c.Submitted || c.Graded {
			return nil
		}
		if sess.slate == nil {
			// The slate could not be read or rebuilt; picks stay pending.
			log.Warn().Int64("user_id", userID).Str("date", c.Date).Msg("No slate for submitted card, skipping result check")
			v.Report = &resolver.Report{Pending: len(card.PendingIndexes(c))}
			return nil
		}
		rep, err := s.resolver.Resolve(ctx, c, sess.slate)
		if err != nil {
			return err
		}
		v.Report = &rep
		return s.finalizeIfDone(sess, v)
	})
}

// finalizeIfDone scores a fully settled card and applies progression once.
func (s *CardService) finalizeIfDone(sess *session, v *View) error {
	st := sess.active
	c := st.Card
	if !card.AllTerminal(c) || c.Graded {
		return nil
	}

	now := s.clock.Now()
	score, fired, err := card.Finalize(c, s.engine, st.ScoringMode, now)
	if err != nil || !fired {
		return err
	}

	delta, err := progression.Apply(&st.Progression, progression.Input{
		Card:  c,
		Slate: sess.slate,
		Score: score,
		Now:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to apply progression: %w", err)
	}

	addHistory(st, historyEntry(c, &score, &delta))
	v.Delta = &delta
	v.Score = &score
	v.BadgesAwarded = append(v.BadgesAwarded, delta.BadgesAwarded...)

	log.Info().
		Int64("user_id", st.UserID).
		Str("date", c.Date).
		Int("points", score.TotalPoints).
		Int("xp", delta.XP).
		Int("coins", delta.Coins).
		Int("level", delta.NewLevel).
		Bool("sandbox", sess.sandbox()).
		Msg("Card finalized")
	return nil
}

func historyEntry(c *model.DailyCard, score *model.ScoreResult, delta *progression.Delta) model.HistoryEntry {
	e := model.HistoryEntry{
		ID:          uuid.NewString(),
		Date:        c.Date,
		Picks:       append([]model.UserPick(nil), c.Picks...),
		Submitted:   c.Submitted,
		Graded:      c.Graded,
		ScoringMode: c.ScoringMode,
	}
	for _, p := range c.Picks {
		if p.Status == model.PickWon {
			e.CorrectCount++
		}
	}
	if score != nil {
		e.CorrectCount = score.CorrectCount
		e.TotalPoints = score.TotalPoints
		e.IsPerfect = score.IsPerfect
		e.LockWon = score.LockResult == model.LockWon
	}
	if delta != nil {
		e.XPEarned = delta.XP
		e.CoinsEarned = delta.Coins
		e.ChallengesCompleted = delta.ChallengesCompleted
	}
	return e
}

// addHistory prepends entry, newest first, replacing any entry for the same date.
func addHistory(st *model.UserState, entry model.HistoryEntry) {
	out := make([]model.HistoryEntry, 0, len(st.History)+1)
	out = append(out, entry)
	for _, h := range st.History {
		if h.Date != entry.Date {
			out = append(out, h)
		}
	}
	if len(out) > MaxHistory {
		out = out[:MaxHistory]
	}
	st.History = out
}

// SetMode changes the user's scoring mode. It applies to cards not yet graded.
func (s *CardService) SetMode(ctx context.Context, userID int64, mode string) (*View, error) {
	return s.do(ctx, userID, func(sess *session, _ *View) error {
		sess.active.ScoringMode = scoring.ParseMode(mode)
		return nil
	})
}

// Reset discards today's card before submission.
func (s *CardService) Reset(ctx context.Context, userID int64) (*View, error) {
	return s.do(ctx, userID, func(sess *session, _ *View) error {
		if err := requireCard(sess); err != nil {
			return err
		}
		if sess.active.Card.Submitted {
			return card.ErrAlreadySubmitted
		}
		today := s.clock.Today()
		sess.active.Card = card.New(today, sess.slate, progression.SelectChallengeIDs(today))
		return nil
	})
}

// EnterSandbox copies the user's real state into an isolated testing state
// and routes card operations to it.
func (s *CardService) EnterSandbox(ctx context.Context, userID int64) (*View, error) {
	return s.setSandbox(ctx, userID, true)
}

// ExitSandbox discards the testing state and returns to real state.
func (s *CardService) ExitSandbox(ctx context.Context, userID int64) (*View, error) {
	return s.setSandbox(ctx, userID, false)
}

func (s *CardService) setSandbox(ctx context.Context, userID int64, on bool) (*View, error) {
	var view *View
	err := s.locks.WithLockContext(ctx, userID, lockTimeout, func() error {
		base, err := s.states.Load(ctx, userID, false)
		if err != nil {
			return err
		}
		if base.Sandbox == on {
			view = &View{State: base, Card: base.Card, Sandbox: on}
			return nil
		}

		if on {
			shadow, err := cloneState(base)
			if err != nil {
				return err
			}
			shadow.Sandbox = false
			if err := s.states.Save(ctx, shadow, true); err != nil {
				return err
			}
		} else if err := s.states.Delete(ctx, userID, true); err != nil {
			return err
		}

		base.Sandbox = on
		if err := s.states.Save(ctx, base, false); err != nil {
			return err
		}
		log.Info().Int64("user_id", userID).Bool("sandbox", on).Msg("Sandbox mode changed")
		view = &View{State: base, Card: base.Card, Sandbox: on}
		return nil
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return nil, ErrBusy
	}
	return view, err
}

func cloneState(st *model.UserState) (*model.UserState, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to copy state: %w", err)
	}
	var out model.UserState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to copy state: %w", err)
	}
	return &out, nil
}

// Simulate plays out today's sandbox card: unanswered picks get random
// choices, a lock is set if missing, the card is submitted and every
// pending pick is settled from rng before finalizing.
func (s *CardService) Simulate(ctx context.Context, userID int64, rng *rand.Rand) (*View, error) {
	return s.do(ctx, userID, func(sess *session, v *View) error {
		if !sess.sandbox() {
			return ErrNotInSandbox
		}
		if err := requireCard(sess); err != nil {
			return err
		}
		c := sess.active.Card
		if c.Graded {
			return card.ErrAlreadyGraded
		}

		if !c.Submitted {
			// The zero time precedes every game, so started games stay selectable here.
			var beforeAll time.Time
			for i, p := range c.Picks {
				if p.Choice != model.ChoiceNone {
					continue
				}
				choice := model.ChoiceA
				if rng.IntN(2) == 1 {
					choice = model.ChoiceB
				}
				if err := card.Select(c, sess.slate, i, choice, beforeAll); err != nil {
					return err
				}
			}
			if c.LockIndex == nil {
				for i, p := range c.Picks {
					if p.Choice == model.ChoicePass {
						continue
					}
					if err := card.SetLock(c, i); err != nil {
						return err
					}
					break
				}
			}
			if err := card.Submit(c, s.clock.Now()); err != nil {
				return err
			}
		}

		for _, idx := range card.PendingIndexes(c) {
			status := model.PickLost
			switch r := rng.Float64(); {
			case r < simPushRate:
				status = model.PickPush
			case r < simPushRate+simWinRate:
				status = model.PickWon
			}
			if err := card.Grade(c, idx, status); err != nil {
				return err
			}
		}
		return s.finalizeIfDone(sess, v)
	})
}

// Profile returns the user's active state without creating a card.
func (s *CardService) Profile(ctx context.Context, userID int64) (*model.UserState, bool, error) {
	base, err := s.states.Load(ctx, userID, false)
	if err != nil {
		return nil, false, err
	}
	if !base.Sandbox {
		return base, false, nil
	}
	shadow, err := s.states.Load(ctx, userID, true)
	return shadow, true, err
}

// CheckAll checks results for every user with a submitted, ungraded real
// card, including users currently in sandbox. It returns how many cards
// still have pending picks.
func (s *CardService) CheckAll(ctx context.Context) (int, error) {
	ids, err := s.states.UserIDs(ctx)
	if err != nil {
		return 0, err
	}

	outstanding := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return outstanding, err
		}
		st, err := s.states.Load(ctx, id, false)
		if err != nil || st.Card == nil || !st.Card.Submitted || st.Card.Graded {
			continue
		}
		v, err := s.checkResults(ctx, id, true)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("Result check failed")
			outstanding++
			continue
		}
		if v.Card != nil && v.Card.Submitted && !v.Card.Graded {
			outstanding++
		}
	}
	return outstanding, nil
}
