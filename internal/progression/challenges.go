package progression

import (
	"sort"

	"daily-picks-bot/internal/model"
)

// ChallengesPerDay is how many challenges are offered each date.
const ChallengesPerDay = 3

// ChallengeContext is what a challenge predicate may inspect.
type ChallengeContext struct {
	Score model.ScoreResult
	Card  *model.DailyCard
	Slate *model.Slate
	Stats *model.AllTimeStats
}

// Challenge is a daily objective with a fixed reward.
type Challenge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	XP          int
	Coins       int
	Check       func(ctx ChallengeContext) bool
}

func wonWhere(ctx ChallengeContext, fn func(sp model.SlatePick)) {
	for i, p := range ctx.Card.Picks {
		if p.Status == model.PickWon && i < len(ctx.Slate.Picks) {
			fn(ctx.Slate.Picks[i])
		}
	}
}

var challengePool = []Challenge{
	{ID: "sweep", Name: "Clean Sweep", Description: "Get every pick correct", Icon: "🧹", XP: 75, Coins: 50,
		Check: func(ctx ChallengeContext) bool { return ctx.Score.IsPerfect }},
	{ID: "lock_win", Name: "Lock It In", Description: "Win your Lock of the Day", Icon: "🔐", XP: 30, Coins: 25,
		Check: func(ctx ChallengeContext) bool { return ctx.Score.LockResult == model.LockWon }},
	{ID: "no_pass", Name: "All In", Description: "Submit without using PASS", Icon: "🎰", XP: 25, Coins: 20,
		Check: func(ctx ChallengeContext) bool {
			for _, p := range ctx.Card.Picks {
				if p.Choice == model.ChoicePass || p.Status == model.PickPassed {
					return false
				}
			}
			return true
		}},
	{ID: "streak_3", Name: "Hot Hand", Description: "Hit 3+ picks in a row", Icon: "✋", XP: 20, Coins: 15,
		Check: func(ctx ChallengeContext) bool { return ctx.Stats.CurrentPickStreak >= 3 }},
	{ID: "five_correct", Name: "High Five", Description: "Get at least 5 correct", Icon: "🖐️", XP: 20, Coins: 15,
		Check: func(ctx ChallengeContext) bool { return ctx.Score.CorrectCount >= 5 }},
	{ID: "underdog", Name: "Underdog Day", Description: "Win 3+ spread picks", Icon: "🐕", XP: 30, Coins: 25,
		Check: func(ctx ChallengeContext) bool {
			wins := 0
			wonWhere(ctx, func(sp model.SlatePick) {
				if sp.Market == model.MarketSpread {
					wins++
				}
			})
			return wins >= 3
		}},
	{ID: "multi_sport", Name: "Well Rounded", Description: "Get correct picks in 2+ sports", Icon: "🌐", XP: 25, Coins: 20,
		Check: func(ctx ChallengeContext) bool {
			sports := make(map[model.Sport]bool)
			wonWhere(ctx, func(sp model.SlatePick) { sports[sp.Sport] = true })
			return len(sports) >= 2
		}},
}

// Challenges returns the full pool.
func Challenges() []Challenge {
	return append([]Challenge(nil), challengePool...)
}

// ChallengeByID looks up a challenge in the pool.
func ChallengeByID(id string) (Challenge, bool) {
	for _, c := range challengePool {
		if c.ID == id {
			return c, true
		}
	}
	return Challenge{}, false
}

// SelectChallenges picks the date's challenges. The order key is derived
// from the sum of the date's character codes, so a date always yields the
// same set.
func SelectChallenges(date string) []Challenge {
	seed := 0
	for _, r := range date {
		seed += int(r)
	}
	key := func(c Challenge) int {
		return (seed*31 + int(c.ID[0])*17) % 97
	}

	pool := Challenges()
	sort.SliceStable(pool, func(i, j int) bool { return key(pool[i]) < key(pool[j]) })
	return pool[:ChallengesPerDay]
}

// SelectChallengeIDs is SelectChallenges reduced to ids.
func SelectChallengeIDs(date string) []string {
	selected := SelectChallenges(date)
	ids := make([]string, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}
	return ids
}
