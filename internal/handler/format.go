package handler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/progression"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/resolver"
	"daily-picks-bot/internal/scoring"
	"daily-picks-bot/internal/service"
)

const divider = "━━━━━━━━━━━━━━━"

var statusIcons = map[model.PickStatus]string{
	model.PickUnselected: "⬜",
	model.PickSelected:   "☑️",
	model.PickPending:    "⏳",
	model.PickWon:        "✅",
	model.PickLost:       "❌",
	model.PickPush:       "➖",
	model.PickPassed:     "⏭️",
}

// FormatCard renders a card against its slate.
func FormatCard(v *service.View, now time.Time) string {
	var b strings.Builder
	if v.Sandbox {
		b.WriteString("🧪 SANDBOX MODE\n")
	}
	if v.Slate == nil || v.Card == nil {
		b.WriteString("📭 No games on the slate today. Check back tomorrow!")
		return b.String()
	}

	c := v.Card
	fmt.Fprintf(&b, "📋 Daily Card %s\n%s\n", c.Date, divider)
	for i, sp := range v.Slate.Picks {
		if i >= len(c.Picks) {
			break
		}
		up := c.Picks[i]
		lock := ""
		if up.IsLockOfDay {
			lock = " 🔒"
		}
		fmt.Fprintf(&b, "%s %d. [%s] %s @ %s (%s)%s\n",
			statusIcons[up.Status], i+1, sp.Sport, sp.AwayTeam, sp.HomeTeam,
			provider.CountdownText(sp.GameTime, now), lock)
		fmt.Fprintf(&b, "    A: %s | B: %s", sp.OptionA, sp.OptionB)
		if up.Choice != model.ChoiceNone {
			fmt.Fprintf(&b, " → %s", choiceLabel(sp, up.Choice))
		}
		b.WriteString("\n")
	}
	b.WriteString(divider + "\n")

	mode := v.State.ScoringMode
	switch {
	case c.Graded && c.Score != nil:
		b.WriteString(scoring.FormatBreakdown(*c.Score))
	case c.Submitted:
		fmt.Fprintf(&b, "📨 Submitted. Points so far: %d (max %d)",
			scoring.QuickScore(c.Picks, c.LockIndex, mode),
			scoring.MaxPossibleScore(len(c.Picks), c.LockIndex != nil))
	default:
		answered := 0
		for _, p := range c.Picks {
			if p.Choice != model.ChoiceNone {
				answered++
			}
		}
		fmt.Fprintf(&b, "✏️ %d/%d answered · %s mode", answered, len(c.Picks), scoring.RulesDescription(mode).Name)
		if c.LockIndex == nil {
			b.WriteString("\n🔒 No Lock of the Day set")
		}
	}
	return b.String()
}

func choiceLabel(sp model.SlatePick, ch model.Choice) string {
	switch ch {
	case model.ChoiceA:
		return sp.OptionA
	case model.ChoiceB:
		return sp.OptionB
	case model.ChoicePass:
		return "Pass"
	}
	return ""
}

// FormatReport summarises a result check.
func FormatReport(r *resolver.Report) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 %d pick(s) graded, %d still pending", len(r.Graded), r.Pending)
	if len(r.Unavailable) > 0 {
		sports := make([]string, len(r.Unavailable))
		for i, s := range r.Unavailable {
			sports[i] = string(s)
		}
		fmt.Fprintf(&b, "\n⚠️ No data for %s right now, will retry", strings.Join(sports, ", "))
	}
	if r.Stale {
		b.WriteString("\n📦 Using cached scores")
	}
	return b.String()
}

// FormatDelta renders the rewards from a finalized card.
func FormatDelta(d progression.Delta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 Rewards\n%s\n", divider)
	for _, item := range d.Items {
		fmt.Fprintf(&b, "%s: +%d XP", item.Label, item.XP)
		if item.Coins > 0 {
			fmt.Fprintf(&b, ", +%d 🪙", item.Coins)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: +%d XP, +%d 🪙", d.XP, d.Coins)
	for _, lvl := range d.LevelUps {
		fmt.Fprintf(&b, "\n⬆️ Level up! Level %d (%s)", lvl, progression.Tier(lvl))
	}
	if d.LeveledUp() {
		for lvl := d.OldLevel + 1; lvl <= d.NewLevel; lvl++ {
			if r, ok := progression.RewardAt(lvl); ok {
				fmt.Fprintf(&b, "\n%s Unlocked: %s", r.Icon, r.Name)
			}
		}
	}
	return b.String()
}

// FormatBadgesAwarded lists newly earned badges.
func FormatBadgesAwarded(ids []string) string {
	var lines []string
	for _, id := range ids {
		if badge, ok := progression.BadgeByID(id); ok {
			lines = append(lines, fmt.Sprintf("%s Badge unlocked: %s", badge.Icon, badge.Name))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatProfile renders level, coins and lifetime stats.
func FormatProfile(st *model.UserState, sandbox bool) string {
	p := st.Progression
	info := progression.Info(p.XP)
	all := p.Stats.AllTime

	var b strings.Builder
	if sandbox {
		b.WriteString("🧪 SANDBOX MODE\n")
	}
	fmt.Fprintf(&b, "👤 Profile\n%s\n", divider)
	fmt.Fprintf(&b, "⭐ Level %d (%s)\n", info.Level, info.Tier)
	if info.IsMax {
		fmt.Fprintf(&b, "✨ %d XP (max level)\n", info.XP)
	} else {
		fmt.Fprintf(&b, "✨ %d XP, %d to next (%s)\n", info.XP, info.XPToNext, progressBar(info.Progress))
	}
	fmt.Fprintf(&b, "🪙 %d coins\n", p.Coins)
	fmt.Fprintf(&b, "⚙️ %s scoring\n", scoring.RulesDescription(st.ScoringMode).Name)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "🎯 Picks: %d/%d correct (%s)\n", all.CorrectPicks, all.TotalPicks, percent(all.CorrectPicks, all.TotalPicks))
	fmt.Fprintf(&b, "📅 Days played: %d · Perfect days: %d\n", all.DaysPlayed, all.PerfectDays)
	fmt.Fprintf(&b, "🔥 Pick streak: %d (best %d)\n", all.CurrentPickStreak, all.BestPickStreak)
	fmt.Fprintf(&b, "📆 Day streak: %d (best %d)\n", all.CurrentDayStreak, all.BestDayStreak)
	fmt.Fprintf(&b, "🔒 Lock wins: %d · Best day: %d pts\n", all.LockOfDayWins, all.BestDailyScore)
	fmt.Fprintf(&b, "📈 This week: %d/%d · This month: %d/%d",
		p.Stats.Weekly.Correct, p.Stats.Weekly.Picks, p.Stats.Monthly.Correct, p.Stats.Monthly.Picks)

	if len(all.BySport) > 0 {
		sports := make([]string, 0, len(all.BySport))
		for s := range all.BySport {
			sports = append(sports, string(s))
		}
		sort.Strings(sports)
		b.WriteString("\n" + divider)
		for _, s := range sports {
			t := all.BySport[model.Sport(s)]
			fmt.Fprintf(&b, "\n%s: %d/%d (%s)", s, t.Correct, t.Total, percent(t.Correct, t.Total))
		}
	}
	if info.NextReward != nil {
		fmt.Fprintf(&b, "\n%s\n🎁 Level %d unlocks %s %s", divider, info.NextReward.Level, info.NextReward.Icon, info.NextReward.Name)
	}
	return b.String()
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
}

func progressBar(f float64) string {
	const width = 10
	filled := int(f * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}

// FormatBadges lists earned and locked badges.
func FormatBadges(p model.Progression) string {
	var earned, locked []string
	for _, badge := range progression.Badges() {
		if p.HasBadge(badge.ID) {
			earned = append(earned, fmt.Sprintf("%s %s", badge.Icon, badge.Name))
		} else {
			locked = append(locked, fmt.Sprintf("🔒 %s: %s", badge.Name, badge.Description))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏅 Badges %d/%d\n%s", len(earned), len(earned)+len(locked), divider)
	for _, line := range earned {
		b.WriteString("\n" + line)
	}
	for _, line := range locked {
		b.WriteString("\n" + line)
	}
	return b.String()
}

// FormatChallenges lists today's challenges with their rewards.
func FormatChallenges(c *model.DailyCard) string {
	if c == nil {
		return "📭 No challenges today."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Challenges %s\n%s", c.Date, divider)
	for _, cp := range c.Challenges {
		ch, ok := progression.ChallengeByID(cp.ID)
		if !ok {
			continue
		}
		done := "⬜"
		if cp.Completed {
			done = "✅"
		}
		fmt.Fprintf(&b, "\n%s %s %s: %s (+%d XP, +%d 🪙)", done, ch.Icon, ch.Name, ch.Description, ch.XP, ch.Coins)
	}
	return b.String()
}

// FormatHistory lists the most recent archived cards.
func FormatHistory(history []model.HistoryEntry, limit int) string {
	if len(history) == 0 {
		return "📜 No history yet."
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📜 Recent cards\n%s", divider)
	for _, h := range history {
		icon := "📨"
		switch {
		case h.IsPerfect:
			icon = "💯"
		case h.Graded:
			icon = "✅"
		}
		fmt.Fprintf(&b, "\n%s %s: %d/%d correct, %d pts", icon, h.Date, h.CorrectCount, len(h.Picks), h.TotalPoints)
		if h.Graded {
			fmt.Fprintf(&b, ", +%d XP", h.XPEarned)
		} else {
			b.WriteString(" (ungraded)")
		}
	}
	return b.String()
}

// FormatMode describes a scoring mode.
func FormatMode(mode model.ScoringMode) string {
	d := scoring.RulesDescription(mode)
	var b strings.Builder
	fmt.Fprintf(&b, "⚙️ %s scoring\n%s\n%s\n", d.Name, d.Summary, divider)
	for _, r := range d.Rules {
		mark := ""
		if r.Highlight {
			mark = " ⚠️"
		}
		fmt.Fprintf(&b, "%s: %s%s\n", r.Label, r.Value, mark)
	}
	b.WriteString("Switch with /mode classic or /mode competitive")
	return b.String()
}

// FormatStatus renders data provider health.
func FormatStatus(s provider.APIStatus, anyLive bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📡 %s\n%s\n", s.Badge(), divider)
	fmt.Fprintf(&b, "Scores available: %s\n", yesNo(s.Available))
	fmt.Fprintf(&b, "Using cached data: %s\n", yesNo(s.UsingCachedData))
	fmt.Fprintf(&b, "Odds key: %s · Odds disabled: %s\n", yesNo(s.HasOddsKey), yesNo(s.OddsDisabled))
	fmt.Fprintf(&b, "Games live: %s", yesNo(anyLive))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// FormatScoreboard renders a sport's games for a date.
func FormatScoreboard(sport provider.Sport, snap provider.Snapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n%s", sport.Emoji, sport.Name, divider)
	if !snap.Available {
		b.WriteString("\n⚠️ Scores unavailable right now")
		return b.String()
	}
	if len(snap.Games) == 0 {
		b.WriteString("\nNo games today")
		return b.String()
	}
	for _, g := range snap.Games {
		fmt.Fprintf(&b, "\n%s · %s", provider.ScoreLine(g), provider.StatusText(g, now))
	}
	if snap.Stale {
		b.WriteString("\n📦 Cached scores")
	}
	return b.String()
}
