package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-picks-bot/internal/model"
)

func intPtr(i int) *int { return &i }

func wonPicks(n int) []model.UserPick {
	picks := make([]model.UserPick, n)
	for i := range picks {
		picks[i] = model.UserPick{Choice: model.ChoiceA, Status: model.PickWon}
	}
	return picks
}

func TestScore_PerfectDayWithCorrectLock(t *testing.T) {
	picks := wonPicks(7)
	sp, sr := FromStatuses(picks, intPtr(2))

	res := Score(sp, sr, model.ModeClassic)

	require.True(t, res.IsValid)
	assert.Equal(t, 70, res.BasePoints)
	assert.True(t, res.IsPerfect)
	assert.False(t, res.IsNearPerfect)
	assert.Equal(t, model.LockWon, res.LockResult)
	assert.Equal(t, 2, res.LockIndex)
	assert.Equal(t, []string{"Perfect Card (+15)", "Lock of Day (+5)"}, res.BonusesApplied)
	assert.Equal(t, 20, res.BonusPoints)
	assert.Equal(t, 90, res.TotalPoints)
}

func TestScore_CompetitiveNearPerfectWrongLock(t *testing.T) {
	picks := wonPicks(7)
	picks[4] = model.UserPick{Choice: model.ChoiceB, Status: model.PickLost}
	sp, sr := FromStatuses(picks, intPtr(4))

	res := Score(sp, sr, model.ModeCompetitive)

	assert.Equal(t, 60, res.BasePoints)
	assert.True(t, res.IsNearPerfect)
	assert.Equal(t, model.LockLost, res.LockResult)
	assert.Equal(t, -5, res.LockPoints)
	assert.Equal(t, []string{"Near Perfect (+5)", "Lock of Day (-5)"}, res.BonusesApplied)
	assert.Equal(t, 60, res.TotalPoints)

	classic := Score(sp, sr, model.ModeClassic)
	assert.Equal(t, 0, classic.LockPoints)
	assert.Equal(t, 65, classic.TotalPoints)
}

func TestScore_PassedPickStillPerfect(t *testing.T) {
	picks := wonPicks(7)
	picks[0] = model.UserPick{Choice: model.ChoicePass, Status: model.PickPassed}
	sp, sr := FromStatuses(picks, nil)

	res := Score(sp, sr, model.ModeClassic)

	assert.Equal(t, 6, res.GradedCount)
	assert.Equal(t, 1, res.PassCount)
	assert.True(t, res.IsPerfect)
	assert.Equal(t, -1, res.LockIndex)
	assert.Equal(t, model.LockNone, res.LockResult)
	assert.Equal(t, 75, res.TotalPoints)
}

func TestScore_TotalFlooredAtZero(t *testing.T) {
	picks := []model.UserPick{
		{Choice: model.ChoiceA, Status: model.PickLost},
		{Choice: model.ChoiceB, Status: model.PickLost},
	}
	sp, sr := FromStatuses(picks, intPtr(0))

	res := Score(sp, sr, model.ModeCompetitive)

	assert.Equal(t, 0, res.BasePoints)
	assert.Equal(t, -5, res.BonusPoints)
	assert.Equal(t, 0, res.TotalPoints)
}

func TestScore_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		picks   []Pick
		results []Result
		wantErr string
	}{
		{"nil picks", nil, []Result{}, errNotArrays},
		{"nil results", []Pick{{Choice: model.ChoiceA}}, nil, errNotArrays},
		{"empty", []Pick{}, []Result{}, errNoPicks},
		{"mismatch", []Pick{{Choice: model.ChoiceA}}, []Result{{}, {}}, errMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.picks, tt.results, model.ModeClassic)
			assert.False(t, res.IsValid)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Equal(t, 0, res.TotalPoints)
			assert.Equal(t, -1, res.LockIndex)
		})
	}
}

func TestEvaluatePick_PriorityOrder(t *testing.T) {
	tests := []struct {
		name   string
		pick   Pick
		result Result
		want   model.Outcome
		points int
	}{
		{"pass beats canceled", Pick{Choice: model.ChoicePass}, Result{Status: StatusCanceled}, model.OutcomePass, 0},
		{"no choice is a pass", Pick{}, Result{Status: StatusFinal, CorrectAnswer: model.ChoiceA}, model.OutcomePass, 0},
		{"canceled beats push", Pick{Choice: model.ChoiceA}, Result{Status: StatusCanceled}, model.OutcomeCanceled, 0},
		{"push status", Pick{Choice: model.ChoiceA}, Result{Status: StatusPush, CorrectAnswer: model.ChoiceA}, model.OutcomePush, 0},
		{"final without answer is push", Pick{Choice: model.ChoiceA}, Result{Status: StatusFinal}, model.OutcomePush, 0},
		{"pending beats missing answer", Pick{Choice: model.ChoiceA}, Result{Status: StatusPending}, model.OutcomePending, 0},
		{"correct", Pick{Choice: model.ChoiceB}, Result{Status: StatusFinal, CorrectAnswer: model.ChoiceB}, model.OutcomeCorrect, 10},
		{"incorrect", Pick{Choice: model.ChoiceB}, Result{Status: StatusFinal, CorrectAnswer: model.ChoiceA}, model.OutcomeIncorrect, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluatePick(tt.pick, tt.result)
			assert.Equal(t, tt.want, ev.Outcome)
			assert.Equal(t, tt.points, ev.Points)
		})
	}
}

func TestScore_LockResultMapping(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		choice model.Choice
		want   model.LockResult
	}{
		{"won", Result{Status: StatusFinal, CorrectAnswer: model.ChoiceA}, model.ChoiceA, model.LockWon},
		{"lost", Result{Status: StatusFinal, CorrectAnswer: model.ChoiceB}, model.ChoiceA, model.LockLost},
		{"push", Result{Status: StatusPush}, model.ChoiceA, model.LockPush},
		{"canceled counts as push", Result{Status: StatusCanceled}, model.ChoiceA, model.LockPush},
		{"pending", Result{Status: StatusPending}, model.ChoiceA, model.LockNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picks := []Pick{{Choice: model.ChoiceA}, {Choice: tt.choice, IsLockOfDay: true}}
			results := []Result{{Status: StatusFinal, CorrectAnswer: model.ChoiceA}, tt.result}
			res := Score(picks, results, model.ModeCompetitive)
			assert.Equal(t, tt.want, res.LockResult)
			assert.Equal(t, 1, res.LockIndex)
		})
	}
}

func TestScore_PendingExcludedFromCounts(t *testing.T) {
	picks := []model.UserPick{
		{Choice: model.ChoiceA, Status: model.PickWon},
		{Choice: model.ChoiceB, Status: model.PickPending},
		{Choice: model.ChoiceB, Status: model.PickPush},
	}
	sp, sr := FromStatuses(picks, intPtr(1))

	res := Score(sp, sr, model.ModeClassic)

	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 1, res.PendingCount)
	assert.Equal(t, 1, res.PushCount)
	assert.Equal(t, 1, res.GradedCount)
	assert.Equal(t, model.LockNone, res.LockResult)
	// One graded pick meets the default perfect threshold.
	assert.True(t, res.IsPerfect)
	assert.Equal(t, 25, res.TotalPoints)
}

func TestEngine_CustomThresholds(t *testing.T) {
	e := New(&Rules{MinPicksForPerfect: 3, MinPicksForNearPerfect: 4})
	sp, sr := FromStatuses(wonPicks(2), nil)

	res := e.Score(sp, sr, model.ModeClassic)
	assert.False(t, res.IsPerfect)
	assert.Equal(t, 20, res.TotalPoints)

	picks := wonPicks(3)
	picks[0].Status = model.PickLost
	sp, sr = FromStatuses(picks, nil)
	res = e.Score(sp, sr, model.ModeClassic)
	assert.False(t, res.IsNearPerfect)

	assert.Equal(t, DefaultRules(), New(&Rules{}).rules)
}

func TestFromStatuses(t *testing.T) {
	picks := []model.UserPick{
		{Choice: model.ChoiceA, Status: model.PickWon},
		{Choice: model.ChoiceA, Status: model.PickLost},
		{Choice: model.ChoiceB, Status: model.PickPush},
		{Choice: model.ChoicePass, Status: model.PickPassed},
		{Choice: model.ChoiceB, Status: model.PickPending},
	}

	sp, sr := FromStatuses(picks, intPtr(1))

	assert.Equal(t, []Result{
		{Status: StatusFinal, CorrectAnswer: model.ChoiceA},
		{Status: StatusFinal, CorrectAnswer: model.ChoiceB},
		{Status: StatusPush},
		{Status: StatusFinal},
		{Status: StatusPending},
	}, sr)
	assert.False(t, sp[0].IsLockOfDay)
	assert.True(t, sp[1].IsLockOfDay)
}

func TestQuickScoreMatchesScore(t *testing.T) {
	picks := wonPicks(5)
	picks[3].Status = model.PickLost
	// 40 base, near perfect +5, lock +5.
	assert.Equal(t, 50, QuickScore(picks, intPtr(0), model.ModeClassic))
}

func TestMaxPossibleScore(t *testing.T) {
	assert.Equal(t, 90, MaxPossibleScore(7, true))
	assert.Equal(t, 85, MaxPossibleScore(7, false))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, model.ModeCompetitive, ParseMode("competitive"))
	assert.Equal(t, model.ModeCompetitive, ParseMode(" Competitive "))
	assert.Equal(t, model.ModeClassic, ParseMode("classic"))
	assert.Equal(t, model.ModeClassic, ParseMode("hardcore"))
	assert.Equal(t, model.ModeClassic, ParseMode(""))
}

func TestFormatBreakdown(t *testing.T) {
	sp, sr := FromStatuses(wonPicks(7), intPtr(0))
	out := FormatBreakdown(Score(sp, sr, model.ModeClassic))
	assert.Equal(t,
		"Base: 7 x 10 = 70 pts\nBonuses:\n  Perfect Card (+15)\n  Lock of Day (+5)\nTotal: 90 pts",
		out)
}

func TestRulesDescription(t *testing.T) {
	classic := RulesDescription(model.ModeClassic)
	assert.Equal(t, "Classic", classic.Name)
	assert.Equal(t, "0", classic.Rules[4].Value)
	assert.False(t, classic.Rules[4].Highlight)

	comp := RulesDescription(model.ModeCompetitive)
	assert.Equal(t, "Competitive", comp.Name)
	assert.Equal(t, "-5", comp.Rules[4].Value)
	assert.True(t, comp.Rules[4].Highlight)
}
