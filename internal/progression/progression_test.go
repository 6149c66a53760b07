package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/scoring"
)

var applyNow = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

func nbaSlate(n int) *model.Slate {
	s := &model.Slate{Date: "2026-03-01"}
	for i := 0; i < n; i++ {
		s.Picks = append(s.Picks, model.SlatePick{Sport: "NBA", Market: model.MarketSpread})
	}
	return s
}

func gradedCard(date string, lock *int, statuses ...model.PickStatus) *model.DailyCard {
	c := &model.DailyCard{Date: date, LockIndex: lock, Submitted: true, Graded: true}
	for i, s := range statuses {
		choice := model.ChoiceA
		if s == model.PickPassed {
			choice = model.ChoicePass
		}
		c.Picks = append(c.Picks, model.UserPick{
			Choice:      choice,
			Status:      s,
			IsLockOfDay: lock != nil && *lock == i,
		})
	}
	for _, id := range SelectChallengeIDs(date) {
		c.Challenges = append(c.Challenges, model.ChallengeProgress{ID: id})
	}
	return c
}

func repeat(s model.PickStatus, n int) []model.PickStatus {
	out := make([]model.PickStatus, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestApply_PerfectDayRewardOrder(t *testing.T) {
	lock := 3
	c := gradedCard("2026-03-01", &lock, repeat(model.PickWon, 7)...)
	score := scoring.New(nil).ScoreCard(c, model.ModeClassic)
	require.Equal(t, 90, score.TotalPoints)

	p := model.NewProgression()
	p.XP = 30

	delta, err := Apply(&p, Input{Card: c, Slate: nbaSlate(7), Score: score, Now: applyNow})
	require.NoError(t, err)

	// 30 + 70 base + 50 perfect + 15 lock + 75 sweep + 20 hot hand.
	assert.Equal(t, 260, p.XP)
	assert.Equal(t, 230, delta.XP)
	// 35 base + 100 perfect + 25 lock + 175 streak tiers + 50 + 15 challenges.
	assert.Equal(t, 400, p.Coins)
	assert.Equal(t, 400, delta.Coins)

	// Level 2 from the base XP, then level 3 from the challenge rewards.
	assert.Equal(t, []int{2, 3}, delta.LevelUps)
	assert.Equal(t, 1, delta.OldLevel)
	assert.Equal(t, 3, delta.NewLevel)
	assert.True(t, delta.LeveledUp())

	labels := make([]string, 0, len(delta.Items))
	for _, it := range delta.Items {
		labels = append(labels, it.Label)
	}
	assert.Equal(t, []string{
		"Correct picks", "Perfect card", "Lock of the Day", "Pick streak",
		"Challenge: Clean Sweep", "Challenge: Hot Hand",
	}, labels)

	assert.Equal(t, []string{"sweep", "streak_3"}, delta.ChallengesCompleted)
	assert.False(t, c.Challenges[0].Completed) // multi_sport: NBA only
	assert.True(t, c.Challenges[1].Completed)

	assert.Equal(t, []string{"first_win", "perfect_day", "three_streak", "five_streak"}, delta.BadgesAwarded)

	st := p.Stats.AllTime
	assert.Equal(t, 7, st.CurrentPickStreak)
	assert.Equal(t, 7, st.BestPickStreak)
	assert.Equal(t, 1, st.PerfectDays)
	assert.Equal(t, 1, st.LockOfDayWins)
	assert.Equal(t, 7, st.TotalPicks)
	assert.Equal(t, 7, st.CorrectPicks)
	assert.Equal(t, 1, st.DaysPlayed)
	assert.Equal(t, 90, st.BestDailyScore)
	assert.Equal(t, 2, st.ChallengesCompleted)
	assert.Equal(t, model.Tally{Total: 7, Correct: 7}, st.BySport["NBA"])
	assert.Equal(t, model.Tally{Total: 7, Correct: 7}, st.ByMarket[model.MarketSpread])
	assert.Equal(t, "2026-02-23", p.Stats.Weekly.Key)
	assert.Equal(t, 1, p.Stats.Weekly.PerfectDays)
	assert.Equal(t, "2026-03", p.Stats.Monthly.Key)
}

func TestApply_CompetitiveLockPenaltyKeepsXP(t *testing.T) {
	lock := 0
	statuses := append([]model.PickStatus{model.PickLost}, repeat(model.PickWon, 6)...)
	c := gradedCard("2026-03-02", &lock, statuses...)
	score := scoring.New(nil).ScoreCard(c, model.ModeCompetitive)
	require.Equal(t, 60, score.TotalPoints)

	p := model.NewProgression()
	delta, err := Apply(&p, Input{Card: c, Slate: nbaSlate(7), Score: score, Now: applyNow})
	require.NoError(t, err)

	// 60 base + 5 near perfect + 20 High Five; the lock penalty costs no XP.
	assert.Equal(t, 85, delta.XP)
	// 30 base + 75 streak tiers (six straight wins after the miss) + 15 High Five.
	assert.Equal(t, 120, delta.Coins)
	assert.Equal(t, 0, p.Stats.AllTime.LockOfDayWins)
	assert.Equal(t, []string{"five_correct"}, delta.ChallengesCompleted)
}

func TestApply_InvalidScoreIsNoOp(t *testing.T) {
	c := gradedCard("2026-03-01", nil, model.PickWon)
	p := model.NewProgression()
	p.XP = 42
	before := p

	_, err := Apply(&p, Input{Card: c, Slate: nbaSlate(1), Score: model.ScoreResult{IsValid: false}, Now: applyNow})
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Equal(t, before, p)
	assert.Equal(t, 0, p.Stats.AllTime.DaysPlayed)
}

func TestApply_StreaksFollowSlateOrder(t *testing.T) {
	c := gradedCard("2026-03-01", nil,
		model.PickWon, model.PickWon, model.PickLost, model.PickPush, model.PickWon)
	score := scoring.New(nil).ScoreCard(c, model.ModeClassic)

	p := model.NewProgression()
	p.Stats.AllTime.CurrentPickStreak = 4
	_, err := Apply(&p, Input{Card: c, Slate: nbaSlate(5), Score: score, Now: applyNow})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Stats.AllTime.CurrentPickStreak)
	assert.Equal(t, 6, p.Stats.AllTime.BestPickStreak)
	// Push is not tallied.
	assert.Equal(t, model.Tally{Total: 4, Correct: 3}, p.Stats.AllTime.BySport["NBA"])
}

func TestApply_DayStreak(t *testing.T) {
	p := model.NewProgression()
	apply := func(date string) {
		c := gradedCard(date, nil, model.PickLost)
		score := scoring.New(nil).ScoreCard(c, model.ModeClassic)
		_, err := Apply(&p, Input{Card: c, Slate: nbaSlate(1), Score: score, Now: applyNow})
		require.NoError(t, err)
	}

	apply("2026-03-01")
	apply("2026-03-02")
	assert.Equal(t, 2, p.Stats.AllTime.CurrentDayStreak)
	assert.Equal(t, "2026-03-02", p.Stats.AllTime.LastPlayedDate)

	// A gap does not break it; each finalized day counts once.
	apply("2026-03-05")
	assert.Equal(t, 3, p.Stats.AllTime.CurrentDayStreak)
	assert.Equal(t, 3, p.Stats.AllTime.BestDayStreak)
	assert.Equal(t, 3, p.Stats.AllTime.DaysPlayed)
	// A zero-point day still counts.
	assert.Equal(t, 0, p.Stats.AllTime.BestDailyScore)
}

func TestApply_CompletedChallengeNotPaidTwice(t *testing.T) {
	lock := 0
	c := gradedCard("2026-03-01", &lock, repeat(model.PickWon, 3)...)
	score := scoring.New(nil).ScoreCard(c, model.ModeClassic)
	for i := range c.Challenges {
		c.Challenges[i].Completed = true
	}

	p := model.NewProgression()
	delta, err := Apply(&p, Input{Card: c, Slate: nbaSlate(3), Score: score, Now: applyNow})
	require.NoError(t, err)
	assert.Empty(t, delta.ChallengesCompleted)
	assert.Equal(t, 0, p.Stats.AllTime.ChallengesCompleted)
}

func TestBadges(t *testing.T) {
	p := model.NewProgression()

	assert.True(t, Award(&p, BadgeFirstPick, applyNow))
	assert.False(t, Award(&p, BadgeFirstPick, applyNow.Add(time.Hour)))
	assert.Equal(t, applyNow, p.Badges[BadgeFirstPick])
	assert.False(t, Award(&p, "h2h_first", applyNow))

	p.Level = 10
	p.Stats.AllTime.ByMarket[model.MarketSpread] = model.Tally{Total: 80, Correct: 50}
	p.Stats.AllTime.BySport["NHL"] = model.Tally{Total: 60, Correct: 50}
	awarded := EvaluateBadges(&p, applyNow)
	assert.Equal(t, []string{"nhl_specialist", "spread_king", "level_5", "level_10"}, awarded)
	assert.Empty(t, EvaluateBadges(&p, applyNow))

	_, ok := BadgeByID("century")
	assert.True(t, ok)
}

func TestWindowKeys(t *testing.T) {
	assert.Equal(t, "2026-02-23", WeekKey("2026-03-01"))
	assert.Equal(t, "2026-03-02", WeekKey("2026-03-02"))
	assert.Equal(t, "2026-03", MonthKey("2026-03-31"))
	assert.Equal(t, "", WeekKey("garbage"))

	p := model.NewProgression()
	p.Stats.Weekly = model.WindowStats{Key: "2026-02-16", Picks: 9}
	p.Stats.Monthly = model.WindowStats{Key: "2026-03", Picks: 9}
	RollWindows(&p, "2026-03-01")
	assert.Equal(t, model.WindowStats{Key: "2026-02-23"}, p.Stats.Weekly)
	assert.Equal(t, 9, p.Stats.Monthly.Picks)
}
