// Package scoring computes a card's score from picks and graded results.
// It is pure: no I/O and no shared mutable state.
package scoring

import (
	"fmt"
	"strings"

	"daily-picks-bot/internal/model"
)

// Point values.
const (
	CorrectPickPoints = 10
	PerfectCardBonus  = 15
	NearPerfectBonus  = 5
	LockBonus         = 5
	LockPenalty       = -5
)

// Invalid input messages.
const (
	errNotArrays = "Invalid input: picks and results must be arrays"
	errNoPicks   = "No picks submitted"
	errMismatch  = "Mismatch: picks and results arrays must have same length"
)

// Rules holds the configurable bonus thresholds.
type Rules struct {
	MinPicksForPerfect     int
	MinPicksForNearPerfect int
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{MinPicksForPerfect: 1, MinPicksForNearPerfect: 2}
}

// Pick is the scoring view of a user pick.
type Pick struct {
	Choice      model.Choice
	IsLockOfDay bool
}

// ResultStatus is the settlement state of a pick's game.
type ResultStatus string

// Result statuses.
const (
	StatusFinal    ResultStatus = "final"
	StatusPending  ResultStatus = "pending"
	StatusPush     ResultStatus = "push"
	StatusCanceled ResultStatus = "canceled"
)

// Result is the graded truth for one pick. CorrectAnswer is ChoiceNone
// when there is no winner.
type Result struct {
	Status        ResultStatus
	CorrectAnswer model.Choice
}

// Engine scores cards under a set of Rules.
type Engine struct {
	rules Rules
}

// New creates an Engine. Zero or missing thresholds fall back to defaults.
func New(rules *Rules) *Engine {
	r := DefaultRules()
	if rules != nil {
		if rules.MinPicksForPerfect > 0 {
			r.MinPicksForPerfect = rules.MinPicksForPerfect
		}
		if rules.MinPicksForNearPerfect > 0 {
			r.MinPicksForNearPerfect = rules.MinPicksForNearPerfect
		}
	}
	return &Engine{rules: r}
}

var defaultEngine = New(nil)

// Score scores with the default rules.
func Score(picks []Pick, results []Result, mode model.ScoringMode) model.ScoreResult {
	return defaultEngine.Score(picks, results, mode)
}

// ParseMode maps user input to a mode. Anything unrecognised is Classic.
func ParseMode(s string) model.ScoringMode {
	if strings.EqualFold(strings.TrimSpace(s), string(model.ModeCompetitive)) {
		return model.ModeCompetitive
	}
	return model.ModeClassic
}

func invalid(msg string, mode model.ScoringMode) model.ScoreResult {
	return model.ScoreResult{
		BonusesApplied: []string{},
		PickResults:    []model.PickEvaluation{},
		LockIndex:      -1,
		Mode:           mode,
		IsValid:        false,
		Error:          msg,
	}
}

// Score evaluates every pick and applies the card-level bonuses once.
// Invalid input yields IsValid=false rather than an error.
func (e *Engine) Score(picks []Pick, results []Result, mode model.ScoringMode) model.ScoreResult {
	mode = ParseMode(string(mode))

	switch {
	case picks == nil || results == nil:
		return invalid(errNotArrays, mode)
	case len(picks) == 0:
		return invalid(errNoPicks, mode)
	case len(picks) != len(results):
		return invalid(errMismatch, mode)
	}

	res := model.ScoreResult{
		BonusesApplied: []string{},
		PickResults:    make([]model.PickEvaluation, 0, len(picks)),
		LockIndex:      -1,
		Mode:           mode,
		IsValid:        true,
	}

	for i, p := range picks {
		if p.IsLockOfDay {
			res.LockIndex = i
		}
	}

	for i, p := range picks {
		ev := EvaluatePick(p, results[i])
		res.PickResults = append(res.PickResults, ev)
		res.BasePoints += ev.Points

		switch ev.Outcome {
		case model.OutcomeCorrect:
			res.CorrectCount++
		case model.OutcomeIncorrect:
			res.IncorrectCount++
		case model.OutcomePush:
			res.PushCount++
		case model.OutcomePass:
			res.PassCount++
		case model.OutcomeCanceled:
			res.CanceledCount++
		case model.OutcomePending:
			res.PendingCount++
		}

		if i == res.LockIndex {
			res.LockResult = lockResultFor(ev.Outcome)
		}
	}

	res.GradedCount = res.CorrectCount + res.IncorrectCount

	res.IsPerfect = res.GradedCount >= e.rules.MinPicksForPerfect &&
		res.IncorrectCount == 0 &&
		res.CorrectCount > 0
	res.IsNearPerfect = res.GradedCount >= e.rules.MinPicksForNearPerfect &&
		res.IncorrectCount == 1 &&
		res.CorrectCount >= 1

	if res.IsPerfect {
		res.BonusPoints += PerfectCardBonus
		res.BonusesApplied = append(res.BonusesApplied, fmt.Sprintf("Perfect Card (+%d)", PerfectCardBonus))
	} else if res.IsNearPerfect {
		res.BonusPoints += NearPerfectBonus
		res.BonusesApplied = append(res.BonusesApplied, fmt.Sprintf("Near Perfect (+%d)", NearPerfectBonus))
	}

	res.LockPoints = LockPoints(res.LockResult, mode)
	switch {
	case res.LockPoints > 0:
		res.BonusPoints += res.LockPoints
		res.BonusesApplied = append(res.BonusesApplied, fmt.Sprintf("Lock of Day (+%d)", res.LockPoints))
	case res.LockPoints < 0:
		res.BonusPoints += res.LockPoints
		res.BonusesApplied = append(res.BonusesApplied, fmt.Sprintf("Lock of Day (%d)", res.LockPoints))
	}

	res.TotalPoints = max(0, res.BasePoints+res.BonusPoints)
	return res
}

// EvaluatePick applies the per-pick rule in priority order: pass, canceled,
// push, pending, then correct/incorrect. A pending result has no answer yet,
// so the missing-answer push rule applies only to settled results.
func EvaluatePick(p Pick, r Result) model.PickEvaluation {
	ev := model.PickEvaluation{
		Choice:        p.Choice,
		CorrectAnswer: r.CorrectAnswer,
		IsLockOfDay:   p.IsLockOfDay,
	}

	switch {
	case p.Choice == model.ChoicePass || p.Choice == model.ChoiceNone:
		ev.Outcome = model.OutcomePass
	case r.Status == StatusCanceled:
		ev.Outcome = model.OutcomeCanceled
	case r.Status == StatusPush:
		ev.Outcome = model.OutcomePush
	// Pending is checked before the null-answer push so an unresolved
	// pick is never scored as a push.
	case r.Status == StatusPending:
		ev.Outcome = model.OutcomePending
	case r.CorrectAnswer == model.ChoiceNone:
		ev.Outcome = model.OutcomePush
	case p.Choice == r.CorrectAnswer:
		ev.Outcome = model.OutcomeCorrect
		ev.Points = CorrectPickPoints
	default:
		ev.Outcome = model.OutcomeIncorrect
	}
	return ev
}

func lockResultFor(o model.Outcome) model.LockResult {
	switch o {
	case model.OutcomeCorrect:
		return model.LockWon
	case model.OutcomeIncorrect:
		return model.LockLost
	case model.OutcomePush, model.OutcomeCanceled:
		return model.LockPush
	case model.OutcomePass:
		return model.LockPass
	default:
		return model.LockNone
	}
}

// LockPoints returns the Lock of the Day adjustment. The two modes differ
// only here: a lost lock costs points in Competitive mode.
func LockPoints(lr model.LockResult, mode model.ScoringMode) int {
	switch {
	case lr == model.LockWon:
		return LockBonus
	case lr == model.LockLost && mode == model.ModeCompetitive:
		return LockPenalty
	default:
		return 0
	}
}

// FromStatuses builds scoring input from pick statuses: won means the
// pick's choice was right, lost means the other side was.
func FromStatuses(picks []model.UserPick, lockIndex *int) ([]Pick, []Result) {
	sp := make([]Pick, len(picks))
	sr := make([]Result, len(picks))
	for i, p := range picks {
		sp[i] = Pick{
			Choice:      p.Choice,
			IsLockOfDay: lockIndex != nil && *lockIndex == i,
		}
		switch p.Status {
		case model.PickWon:
			sr[i] = Result{Status: StatusFinal, CorrectAnswer: p.Choice}
		case model.PickLost:
			sr[i] = Result{Status: StatusFinal, CorrectAnswer: p.Choice.Opposite()}
		case model.PickPush:
			sr[i] = Result{Status: StatusPush}
		case model.PickPassed:
			sr[i] = Result{Status: StatusFinal}
		default:
			sr[i] = Result{Status: StatusPending}
		}
	}
	return sp, sr
}

// ScoreCard scores a card from its pick statuses.
func (e *Engine) ScoreCard(card *model.DailyCard, mode model.ScoringMode) model.ScoreResult {
	picks, results := FromStatuses(card.Picks, card.LockIndex)
	return e.Score(picks, results, mode)
}

// QuickScore returns only the total for a card in progress.
func QuickScore(picks []model.UserPick, lockIndex *int, mode model.ScoringMode) int {
	sp, sr := FromStatuses(picks, lockIndex)
	return Score(sp, sr, mode).TotalPoints
}

// MaxPossibleScore is the best achievable total for a card of n picks.
func MaxPossibleScore(n int, hasLock bool) int {
	total := n*CorrectPickPoints + PerfectCardBonus
	if hasLock {
		total += LockBonus
	}
	return total
}
