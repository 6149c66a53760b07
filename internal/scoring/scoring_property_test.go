package scoring

import (
	"testing"

	"pgregory.net/rapid"

	"daily-picks-bot/internal/model"
)

var (
	choices  = []model.Choice{model.ChoiceA, model.ChoiceB, model.ChoicePass, model.ChoiceNone}
	statuses = []ResultStatus{StatusFinal, StatusPending, StatusPush, StatusCanceled}
	answers  = []model.Choice{model.ChoiceA, model.ChoiceB, model.ChoiceNone}
	modes    = []model.ScoringMode{model.ModeClassic, model.ModeCompetitive}
)

func drawCard(t *rapid.T) ([]Pick, []Result) {
	n := rapid.IntRange(1, 10).Draw(t, "n")
	lock := rapid.IntRange(-1, n-1).Draw(t, "lock")
	picks := make([]Pick, n)
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		picks[i] = Pick{
			Choice:      rapid.SampledFrom(choices).Draw(t, "choice"),
			IsLockOfDay: i == lock,
		}
		results[i] = Result{
			Status:        rapid.SampledFrom(statuses).Draw(t, "status"),
			CorrectAnswer: rapid.SampledFrom(answers).Draw(t, "answer"),
		}
	}
	return picks, results
}

// TestScoreNonNegativeProperty: for any valid card in any mode the total is never negative.
func TestScoreNonNegativeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		picks, results := drawCard(t)
		mode := rapid.SampledFrom(modes).Draw(t, "mode")

		res := Score(picks, results, mode)
		if !res.IsValid {
			t.Fatalf("valid input reported invalid: %s", res.Error)
		}
		if res.TotalPoints < 0 {
			t.Fatalf("negative total %d", res.TotalPoints)
		}
	})
}

// TestScoreCountsProperty: graded = correct + incorrect, and every
// non-pending pick lands in exactly one bucket.
func TestScoreCountsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		picks, results := drawCard(t)
		res := Score(picks, results, model.ModeClassic)

		if res.GradedCount != res.CorrectCount+res.IncorrectCount {
			t.Fatalf("graded %d != %d + %d", res.GradedCount, res.CorrectCount, res.IncorrectCount)
		}
		sum := res.GradedCount + res.PushCount + res.PassCount + res.CanceledCount
		if sum != len(picks)-res.PendingCount {
			t.Fatalf("bucket sum %d, picks %d, pending %d", sum, len(picks), res.PendingCount)
		}
		if res.BasePoints != res.CorrectCount*CorrectPickPoints {
			t.Fatalf("base %d for %d correct", res.BasePoints, res.CorrectCount)
		}
		if res.IsPerfect && res.IsNearPerfect {
			t.Fatalf("perfect and near perfect both set")
		}
	})
}

// TestScoreModesDifferOnlyOnLostLockProperty: Classic and Competitive agree
// except for the penalty on a lost lock.
func TestScoreModesDifferOnlyOnLostLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		picks, results := drawCard(t)
		classic := Score(picks, results, model.ModeClassic)
		comp := Score(picks, results, model.ModeCompetitive)

		if classic.BasePoints != comp.BasePoints || classic.LockResult != comp.LockResult {
			t.Fatalf("modes disagree on base or lock result")
		}
		diff := classic.BonusPoints - comp.BonusPoints
		if comp.LockResult == model.LockLost {
			if diff != -LockPenalty {
				t.Fatalf("lost lock bonus diff %d", diff)
			}
		} else if diff != 0 {
			t.Fatalf("bonus diff %d without a lost lock", diff)
		}
	})
}
