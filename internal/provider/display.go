package provider

import (
	"fmt"
	"time"

	"daily-picks-bot/internal/model"
)

// StatusText is the short label shown next to a game on the slate.
func StatusText(g model.GameRecord, now time.Time) string {
	switch g.Status {
	case model.GameFinal:
		return "FINAL"
	case model.GameLive:
		return "LIVE"
	case model.GameHalftime:
		return "HALF"
	case model.GamePostponed:
		return "PPD"
	case model.GameDelayed:
		return "DELAY"
	}
	return CountdownText(g.StartTime, now)
}

// CountdownText renders time until start for a scheduled game.
func CountdownText(start, now time.Time) string {
	if start.IsZero() {
		return "UPCOMING"
	}
	until := start.Sub(now)
	switch {
	case until <= 0:
		return "LOCKED"
	case until < time.Minute:
		return "STARTING"
	case until < time.Hour:
		return fmt.Sprintf("%dm", int(until.Minutes()))
	case until < 24*time.Hour:
		h := int(until.Hours())
		m := int(until.Minutes()) - h*60
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return "UPCOMING"
	}
}

// ScoreLine renders "AWY 101 - HOM 99" for a game that has started.
func ScoreLine(g model.GameRecord) string {
	away, home := g.AwayAbbrev, g.HomeAbbrev
	if away == "" {
		away = g.AwayTeam
	}
	if home == "" {
		home = g.HomeTeam
	}
	return fmt.Sprintf("%s %d - %s %d", away, g.AwayScore, home, g.HomeScore)
}
