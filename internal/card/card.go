// Package card implements the pick and card lifecycle state machine.
//
// Pick states move Unselected -> Selected -> Pending -> {Won, Lost, Push},
// with a passed pick going Selected -> Pending -> Passed at submission.
// Cards move Editable -> Submitted -> Graded. Every function here is pure
// over *model.DailyCard; persistence is the caller's concern.
package card

import (
	"time"

	"github.com/google/uuid"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/scoring"
)

// transitions lists the allowed next states for each pick state.
// Selected -> Selected is a change of mind before submission.
var transitions = map[model.PickStatus][]model.PickStatus{
	model.PickUnselected: {model.PickSelected},
	model.PickSelected:   {model.PickSelected, model.PickPending},
	model.PickPending:    {model.PickWon, model.PickLost, model.PickPush, model.PickPassed},
}

// CanTransition reports whether a pick may move from one status to another.
func CanTransition(from, to model.PickStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// New creates an editable card with one unselected pick per slate pick.
func New(date string, slate *model.Slate, challengeIDs []string) *model.DailyCard {
	c := &model.DailyCard{
		ID:         uuid.NewString(),
		Date:       date,
		Picks:      make([]model.UserPick, len(slate.Picks)),
		Challenges: make([]model.ChallengeProgress, 0, len(challengeIDs)),
	}
	for i := range c.Picks {
		c.Picks[i] = model.UserPick{Status: model.PickUnselected}
	}
	for _, id := range challengeIDs {
		c.Challenges = append(c.Challenges, model.ChallengeProgress{ID: id})
	}
	return c
}

// Validate checks the structural invariants of a card against its slate.
func Validate(c *model.DailyCard, slate *model.Slate) error {
	if len(c.Picks) != len(slate.Picks) {
		return ErrSlateMismatch
	}
	locks := 0
	for i, p := range c.Picks {
		if p.IsLockOfDay {
			locks++
			if c.LockIndex == nil || *c.LockIndex != i {
				return ErrSlateMismatch
			}
		}
	}
	if locks > 1 {
		return ErrSlateMismatch
	}
	if c.LockIndex != nil {
		i := *c.LockIndex
		if i < 0 || i >= len(c.Picks) || c.Picks[i].Choice == model.ChoicePass {
			return ErrSlateMismatch
		}
	}
	return nil
}

func inRange(c *model.DailyCard, idx int) bool {
	return idx >= 0 && idx < len(c.Picks)
}

// IsPickLocked reports whether the pick's game has started.
func IsPickLocked(slate *model.Slate, idx int, now time.Time) bool {
	return !now.Before(slate.Picks[idx].GameTime)
}

// Select records a choice for the pick at idx. Choosing PASS on the
// current lock clears the lock.
func Select(c *model.DailyCard, slate *model.Slate, idx int, choice model.Choice, now time.Time) error {
	if c.Submitted {
		return ErrAlreadySubmitted
	}
	if !inRange(c, idx) || idx >= len(slate.Picks) {
		return ErrInvalidPickIndex
	}
	if !choice.Valid() {
		return ErrInvalidChoice
	}
	if IsPickLocked(slate, idx, now) {
		return ErrPickLocked
	}
	if !CanTransition(c.Picks[idx].Status, model.PickSelected) {
		return ErrInvalidTransition
	}

	c.Picks[idx].Choice = choice
	c.Picks[idx].Status = model.PickSelected
	if choice == model.ChoicePass && c.LockIndex != nil && *c.LockIndex == idx {
		c.LockIndex = nil
	}
	return nil
}

// SetLock makes idx the Lock of the Day, replacing any previous lock.
func SetLock(c *model.DailyCard, idx int) error {
	if c.Submitted {
		return ErrAlreadySubmitted
	}
	if !inRange(c, idx) {
		return ErrInvalidPickIndex
	}
	switch c.Picks[idx].Choice {
	case model.ChoiceNone:
		return ErrLockRequiresChoice
	case model.ChoicePass:
		return ErrCannotLockPass
	}
	c.LockIndex = &idx
	return nil
}

// ToggleLock sets the lock on idx, or clears it if idx is already locked.
// It reports whether idx is locked afterwards.
func ToggleLock(c *model.DailyCard, idx int) (bool, error) {
	if c.Submitted {
		return false, ErrAlreadySubmitted
	}
	if c.LockIndex != nil && *c.LockIndex == idx {
		c.LockIndex = nil
		return false, nil
	}
	if err := SetLock(c, idx); err != nil {
		return false, err
	}
	return true, nil
}

// Submit moves every pick to Pending in one step and snapshots the lock.
// Passed picks settle straight away since there is nothing to wait for.
func Submit(c *model.DailyCard, now time.Time) error {
	if c.Submitted {
		return ErrAlreadySubmitted
	}
	if !IsComplete(c) {
		return ErrIncompleteCard
	}
	for _, p := range c.Picks {
		if !CanTransition(p.Status, model.PickPending) {
			return ErrIncompleteCard
		}
	}

	for i := range c.Picks {
		p := &c.Picks[i]
		p.Status = model.PickPending
		p.IsLockOfDay = c.LockIndex != nil && *c.LockIndex == i
		if p.Choice == model.ChoicePass {
			p.Status = model.PickPassed
		}
	}
	c.Submitted = true
	c.SubmittedAt = &now
	return nil
}

// Grade settles one pending pick as Won, Lost or Push.
func Grade(c *model.DailyCard, idx int, status model.PickStatus) error {
	if !c.Submitted {
		return ErrNotSubmitted
	}
	if !inRange(c, idx) {
		return ErrInvalidPickIndex
	}
	if c.Picks[idx].Status != model.PickPending {
		return ErrPickNotPending
	}
	if status == model.PickPassed || !CanTransition(model.PickPending, status) {
		return ErrInvalidTransition
	}
	c.Picks[idx].Status = status
	return nil
}

// GradeByWinner settles a pending pick from the winning side. A winner of
// ChoiceNone is a push.
func GradeByWinner(c *model.DailyCard, idx int, winner model.Choice) error {
	if !inRange(c, idx) {
		return ErrInvalidPickIndex
	}
	status := model.PickPush
	switch winner {
	case model.ChoiceNone:
	case c.Picks[idx].Choice:
		status = model.PickWon
	default:
		status = model.PickLost
	}
	return Grade(c, idx, status)
}

// PendingIndexes returns the indexes of picks awaiting a result.
func PendingIndexes(c *model.DailyCard) []int {
	var out []int
	for i, p := range c.Picks {
		if p.Status == model.PickPending {
			out = append(out, i)
		}
	}
	return out
}

// AllTerminal reports whether every pick has settled.
func AllTerminal(c *model.DailyCard) bool {
	for _, p := range c.Picks {
		if !p.Status.IsTerminal() {
			return false
		}
	}
	return len(c.Picks) > 0
}

// IsComplete reports whether every pick has a choice.
func IsComplete(c *model.DailyCard) bool {
	for _, p := range c.Picks {
		if p.Choice == model.ChoiceNone {
			return false
		}
	}
	return true
}

// Finalize scores a fully settled card and marks it graded. It fires at
// most once: on an already graded card it returns the stored score with
// fired=false and changes nothing.
func Finalize(c *model.DailyCard, engine *scoring.Engine, mode model.ScoringMode, now time.Time) (model.ScoreResult, bool, error) {
	if c.Graded {
		if c.Score != nil {
			return *c.Score, false, nil
		}
		return model.ScoreResult{}, false, ErrAlreadyGraded
	}
	if !c.Submitted {
		return model.ScoreResult{}, false, ErrNotSubmitted
	}
	if !AllTerminal(c) {
		return model.ScoreResult{}, false, ErrPicksOutstanding
	}

	res := engine.ScoreCard(c, mode)
	if !res.IsValid {
		return res, false, ErrInvalidScore
	}

	c.Graded = true
	c.GradedAt = &now
	c.ScoringMode = res.Mode
	c.Score = &res
	return res, true, nil
}
