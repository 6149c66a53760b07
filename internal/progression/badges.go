package progression

import (
	"time"

	"daily-picks-bot/internal/model"
)

// Badge is an achievement. Check is nil for badges awarded by an event
// rather than derived from progression.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    string
	Check       func(p *model.Progression) bool
}

// Event-awarded badges.
const (
	BadgeFirstPick = "first_pick"
	BadgeFirstCard = "first_card"
)

func sportCorrect(sport model.Sport, n int) func(*model.Progression) bool {
	return func(p *model.Progression) bool { return p.Stats.AllTime.BySport[sport].Correct >= n }
}

func reachedLevel(n int) func(*model.Progression) bool {
	return func(p *model.Progression) bool { return p.Level >= n }
}

var badgeCatalog = []Badge{
	{ID: BadgeFirstPick, Name: "First Pick", Description: "Make your first pick", Icon: "🎯", Category: "starter"},
	{ID: BadgeFirstCard, Name: "Card Submitted", Description: "Submit your first daily card", Icon: "📝", Category: "starter"},
	{ID: "first_win", Name: "Winner!", Description: "Get your first correct pick", Icon: "✅", Category: "starter",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.CorrectPicks >= 1 }},

	{ID: "perfect_day", Name: "Perfect Card", Description: "Go perfect on a daily card", Icon: "💯", Category: "achievement",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.PerfectDays >= 1 }},
	{ID: "perfect_three", Name: "Hat Trick", Description: "3 perfect cards", Icon: "🎩", Category: "achievement",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.PerfectDays >= 3 }},
	{ID: "perfect_ten", Name: "Perfectionist", Description: "10 perfect cards", Icon: "🏆", Category: "achievement",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.PerfectDays >= 10 }},

	{ID: "three_streak", Name: "Hot Streak", Description: "3 correct picks in a row", Icon: "🔥", Category: "streak",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.BestPickStreak >= 3 }},
	{ID: "five_streak", Name: "On Fire", Description: "5 correct picks in a row", Icon: "🔥🔥", Category: "streak",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.BestPickStreak >= 5 }},
	{ID: "ten_streak", Name: "Unstoppable", Description: "10 correct picks in a row", Icon: "🔥🔥🔥", Category: "streak",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.BestPickStreak >= 10 }},

	{ID: "lock_master", Name: "Lock Master", Description: "Win 10 Lock of the Day picks", Icon: "🔒", Category: "achievement",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.LockOfDayWins >= 10 }},

	{ID: "week_warrior", Name: "Week Warrior", Description: "Play 7 days in a row", Icon: "📅", Category: "dedication",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.BestDayStreak >= 7 }},
	{ID: "daily_grinder", Name: "Daily Grinder", Description: "Play 30 days total", Icon: "💪", Category: "dedication",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.DaysPlayed >= 30 }},
	{ID: "century", Name: "Century Club", Description: "100 correct picks", Icon: "💯", Category: "dedication",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.CorrectPicks >= 100 }},

	{ID: "nba_specialist", Name: "NBA Specialist", Description: "50 correct NBA picks", Icon: "🏀", Category: "specialist", Check: sportCorrect("NBA", 50)},
	{ID: "nfl_specialist", Name: "NFL Specialist", Description: "50 correct NFL picks", Icon: "🏈", Category: "specialist", Check: sportCorrect("NFL", 50)},
	{ID: "nhl_specialist", Name: "NHL Specialist", Description: "50 correct NHL picks", Icon: "🏒", Category: "specialist", Check: sportCorrect("NHL", 50)},
	{ID: "mlb_specialist", Name: "MLB Specialist", Description: "50 correct MLB picks", Icon: "⚾", Category: "specialist", Check: sportCorrect("MLB", 50)},
	{ID: "prop_master", Name: "Prop Master", Description: "25 correct prop picks", Icon: "📊", Category: "specialist", Check: sportCorrect("PROP", 25)},
	{ID: "spread_king", Name: "Spread King", Description: "50 spread wins", Icon: "👑", Category: "specialist",
		Check: func(p *model.Progression) bool { return p.Stats.AllTime.ByMarket[model.MarketSpread].Correct >= 50 }},

	{ID: "level_5", Name: "Rising Star", Description: "Reach Level 5", Icon: "⭐", Category: "level", Check: reachedLevel(5)},
	{ID: "level_10", Name: "All-Star", Description: "Reach Level 10", Icon: "🌟", Category: "level", Check: reachedLevel(10)},
	{ID: "level_15", Name: "Legend", Description: "Reach Level 15", Icon: "🏅", Category: "level", Check: reachedLevel(15)},
}

// Badges returns the catalog in display order.
func Badges() []Badge {
	return append([]Badge(nil), badgeCatalog...)
}

// BadgeByID looks up a badge.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range badgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Award adds a badge once. It reports whether the badge is new.
func Award(p *model.Progression, id string, now time.Time) bool {
	if _, ok := BadgeByID(id); !ok {
		return false
	}
	if p.Badges == nil {
		p.Badges = make(map[string]time.Time)
	}
	if p.HasBadge(id) {
		return false
	}
	p.Badges[id] = now
	return true
}

// EvaluateBadges awards every derived badge whose predicate now holds.
func EvaluateBadges(p *model.Progression, now time.Time) []string {
	var awarded []string
	for _, b := range badgeCatalog {
		if b.Check == nil || p.HasBadge(b.ID) {
			continue
		}
		if b.Check(p) && Award(p, b.ID, now) {
			awarded = append(awarded, b.ID)
		}
	}
	return awarded
}
