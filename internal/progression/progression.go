// Package progression turns a finalized score into experience, levels,
// coins, streaks, badges and daily challenge rewards.
package progression

import (
	"errors"
	"time"

	"daily-picks-bot/internal/model"
)

// XP rewards.
const (
	XPPerfectDay  = 50
	XPNearPerfect = 5
	XPLockWon     = 15
)

// Coin rewards.
const (
	CoinsPerCorrect  = 5
	CoinsPerfectDay  = 100
	CoinsLockWon     = 25
	CoinsStreakThree = 25
	CoinsStreakFive  = 50
	CoinsStreakSeven = 100
)

// ErrInvalidScore is returned for a score the engine marked invalid.
var ErrInvalidScore = errors.New("cannot apply an invalid score")

// Input is a finalized card with its score.
type Input struct {
	Card  *model.DailyCard
	Slate *model.Slate
	Score model.ScoreResult
	Now   time.Time
}

// LineItem is one reward step.
type LineItem struct {
	Label string
	XP    int
	Coins int
}

// Delta reports what a single Apply changed.
type Delta struct {
	XP                  int
	Coins               int
	OldLevel            int
	NewLevel            int
	LevelUps            []int // level reached at each recompute that raised it
	Items               []LineItem
	ChallengesCompleted []string
	BadgesAwarded       []string
}

// LeveledUp reports whether any level was gained.
func (d Delta) LeveledUp() bool {
	return d.NewLevel > d.OldLevel
}

type applier struct {
	p     *model.Progression
	delta Delta
}

func (a *applier) add(label string, xp, coins int) {
	if xp == 0 && coins == 0 {
		return
	}
	a.p.XP += xp
	a.p.Coins += coins
	a.delta.XP += xp
	a.delta.Coins += coins
	a.delta.Items = append(a.delta.Items, LineItem{Label: label, XP: xp, Coins: coins})
	a.recomputeLevel()
}

func (a *applier) recomputeLevel() {
	if lvl := LevelForXP(a.p.XP); lvl > a.p.Level {
		a.p.Level = lvl
		a.delta.LevelUps = append(a.delta.LevelUps, lvl)
	}
}

// Apply folds a finalized card into p. The caller guarantees it runs once
// per card (the card's graded flag). An invalid score changes nothing.
func Apply(p *model.Progression, in Input) (Delta, error) {
	if !in.Score.IsValid {
		return Delta{}, ErrInvalidScore
	}
	ensureMaps(p)
	RollWindows(p, in.Card.Date)

	a := &applier{p: p, delta: Delta{OldLevel: p.Level}}
	stats := &p.Stats.AllTime
	sc := in.Score

	recordPicks(stats, in.Card, in.Slate)

	a.add("Correct picks", sc.BasePoints, sc.CorrectCount*CoinsPerCorrect)

	if sc.IsPerfect {
		stats.PerfectDays++
		p.Stats.Weekly.PerfectDays++
		p.Stats.Monthly.PerfectDays++
		a.add("Perfect card", XPPerfectDay, CoinsPerfectDay)
	} else if sc.IsNearPerfect {
		a.add("Near perfect", XPNearPerfect, 0)
	}

	if sc.LockResult == model.LockWon {
		stats.LockOfDayWins++
		a.add("Lock of the Day", XPLockWon, CoinsLockWon)
	}

	streakCoins := 0
	if stats.CurrentPickStreak >= 3 {
		streakCoins += CoinsStreakThree
	}
	if stats.CurrentPickStreak >= 5 {
		streakCoins += CoinsStreakFive
	}
	if stats.CurrentPickStreak >= 7 {
		streakCoins += CoinsStreakSeven
	}
	a.add("Pick streak", 0, streakCoins)

	recordDay(p, in.Card.Date, sc)

	ctx := ChallengeContext{Score: sc, Card: in.Card, Slate: in.Slate, Stats: stats}
	for i := range in.Card.Challenges {
		cp := &in.Card.Challenges[i]
		if cp.Completed {
			continue
		}
		ch, ok := ChallengeByID(cp.ID)
		if !ok || !ch.Check(ctx) {
			continue
		}
		cp.Completed = true
		stats.ChallengesCompleted++
		a.delta.ChallengesCompleted = append(a.delta.ChallengesCompleted, ch.ID)
		a.add("Challenge: "+ch.Name, ch.XP, ch.Coins)
	}

	a.delta.BadgesAwarded = EvaluateBadges(p, in.Now)
	a.delta.NewLevel = p.Level
	return a.delta, nil
}

// recordPicks updates streaks and per sport/market tallies in slate order.
func recordPicks(stats *model.AllTimeStats, c *model.DailyCard, slate *model.Slate) {
	for i, pick := range c.Picks {
		if pick.Status != model.PickWon && pick.Status != model.PickLost {
			continue
		}
		won := pick.Status == model.PickWon

		if i < len(slate.Picks) {
			sp := slate.Picks[i]
			st := stats.BySport[sp.Sport]
			mt := stats.ByMarket[sp.Market]
			st.Total++
			mt.Total++
			if won {
				st.Correct++
				mt.Correct++
			}
			stats.BySport[sp.Sport] = st
			stats.ByMarket[sp.Market] = mt
		}

		if won {
			stats.CurrentPickStreak++
			stats.BestPickStreak = max(stats.BestPickStreak, stats.CurrentPickStreak)
		} else {
			stats.CurrentPickStreak = 0
		}
	}
}

// recordDay updates per-day totals and the day streak. The day streak
// counts finalized days; a gap between days does not reset it.
func recordDay(p *model.Progression, date string, sc model.ScoreResult) {
	stats := &p.Stats.AllTime
	stats.TotalPicks += sc.GradedCount
	stats.CorrectPicks += sc.CorrectCount
	stats.DaysPlayed++
	stats.BestDailyScore = max(stats.BestDailyScore, sc.TotalPoints)

	p.Stats.Weekly.Picks += sc.GradedCount
	p.Stats.Weekly.Correct += sc.CorrectCount
	p.Stats.Monthly.Picks += sc.GradedCount
	p.Stats.Monthly.Correct += sc.CorrectCount

	if stats.LastPlayedDate != date {
		stats.CurrentDayStreak++
	}
	stats.BestDayStreak = max(stats.BestDayStreak, stats.CurrentDayStreak)
	stats.LastPlayedDate = date
}

const dateLayout = "2006-01-02"

// WeekKey returns the Monday starting date's week.
func WeekKey(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout)
}

// MonthKey returns date's year and month.
func MonthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// RollWindows resets the weekly and monthly counters when date falls in a
// new window.
func RollWindows(p *model.Progression, date string) {
	if wk := WeekKey(date); wk != "" && p.Stats.Weekly.Key != wk {
		p.Stats.Weekly = model.WindowStats{Key: wk}
	}
	if mk := MonthKey(date); mk != "" && p.Stats.Monthly.Key != mk {
		p.Stats.Monthly = model.WindowStats{Key: mk}
	}
}

func ensureMaps(p *model.Progression) {
	if p.Stats.AllTime.BySport == nil {
		p.Stats.AllTime.BySport = make(map[model.Sport]model.Tally)
	}
	if p.Stats.AllTime.ByMarket == nil {
		p.Stats.AllTime.ByMarket = make(map[model.Market]model.Tally)
	}
	if p.Badges == nil {
		p.Badges = make(map[string]time.Time)
	}
	if p.Level < 1 {
		p.Level = 1
	}
}
