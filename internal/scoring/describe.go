package scoring

import (
	"fmt"
	"strings"

	"daily-picks-bot/internal/model"
)

// FormatBreakdown renders a score as short plain-text lines.
func FormatBreakdown(r model.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Base: %d x %d = %d pts\n", r.CorrectCount, CorrectPickPoints, r.BasePoints)
	if len(r.BonusesApplied) > 0 {
		b.WriteString("Bonuses:\n")
		for _, bonus := range r.BonusesApplied {
			fmt.Fprintf(&b, "  %s\n", bonus)
		}
	}
	fmt.Fprintf(&b, "Total: %d pts", r.TotalPoints)
	return b.String()
}

// RuleLine is one row of the rules table.
type RuleLine struct {
	Label     string
	Value     string
	Highlight bool
}

// Description explains a scoring mode to players.
type Description struct {
	Mode    model.ScoringMode
	Name    string
	Summary string
	Rules   []RuleLine
}

// RulesDescription describes the rules for mode.
func RulesDescription(mode model.ScoringMode) Description {
	competitive := ParseMode(string(mode)) == model.ModeCompetitive

	d := Description{
		Mode:    model.ModeClassic,
		Name:    "Classic",
		Summary: "Standard scoring. No penalties for wrong picks.",
	}
	lockWrong := "0"
	if competitive {
		d.Mode = model.ModeCompetitive
		d.Name = "Competitive"
		d.Summary = "Higher risk, higher reward. Wrong locks cost you points!"
		lockWrong = fmt.Sprintf("%d", LockPenalty)
	}

	d.Rules = []RuleLine{
		{Label: "Correct Pick", Value: fmt.Sprintf("+%d", CorrectPickPoints)},
		{Label: "Wrong Pick", Value: "0"},
		{Label: "Push", Value: "0"},
		{Label: "Lock Correct", Value: fmt.Sprintf("+%d", LockBonus)},
		{Label: "Lock Wrong", Value: lockWrong, Highlight: competitive},
		{Label: "Perfect Card", Value: fmt.Sprintf("+%d", PerfectCardBonus)},
		{Label: "Near Perfect", Value: fmt.Sprintf("+%d", NearPerfectBonus)},
	}
	return d
}
