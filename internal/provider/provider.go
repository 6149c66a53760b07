// Package provider fetches game data from upstream sources and fronts
// every fetch with the cache, degrading to stale data when upstream fails.
package provider

import (
	"context"
	"errors"
	"strings"

	"daily-picks-bot/internal/model"
)

// Provider errors.
var (
	ErrUnknownSport = errors.New("unknown sport")
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrUpstream     = errors.New("upstream request failed")
)

// ScoreboardFetcher returns normalized games for a sport on a date
// (YYYY-MM-DD; empty means the provider's current day).
type ScoreboardFetcher interface {
	FetchScoreboard(ctx context.Context, sport Sport, date string) ([]model.GameRecord, error)
}

// OddsFetcher returns current betting lines for a sport.
type OddsFetcher interface {
	FetchOdds(ctx context.Context, sport Sport) ([]OddsLine, error)
}

// OddsLine is one game's lines from an odds provider.
type OddsLine struct {
	ID            string   `json:"id"`
	HomeTeam      string   `json:"homeTeam"`
	AwayTeam      string   `json:"awayTeam"`
	AwaySpread    *float64 `json:"awaySpread,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	HomeMoneyline *int     `json:"homeMoneyline,omitempty"`
	AwayMoneyline *int     `json:"awayMoneyline,omitempty"`
}

// TeamKey is the lowercase last word of a team name ("Boston Celtics" -> "celtics").
func TeamKey(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// SameTeam compares team names by TeamKey.
func SameTeam(a, b string) bool {
	ka, kb := TeamKey(a), TeamKey(b)
	return ka != "" && ka == kb
}
