package resolver

import (
	"fmt"
	"time"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/provider"
)

// GradeGame settles a slate pick against a final game. Option A is the away
// side for spreads and moneylines and the over for totals.
func GradeGame(sp model.SlatePick, g model.GameRecord, now time.Time) model.StoredResult {
	res := model.StoredResult{
		PickID:     sp.ID,
		FinalScore: fmt.Sprintf("%d-%d", g.AwayScore, g.HomeScore),
		ResolvedAt: now,
	}

	var margin float64
	switch sp.Market {
	case model.MarketSpread:
		margin = float64(g.AwayScore-g.HomeScore) + sp.Line
	case model.MarketTotal:
		margin = float64(g.AwayScore+g.HomeScore) - sp.Line
	default:
		margin = float64(g.AwayScore - g.HomeScore)
	}

	switch {
	case margin > 0:
		res.Winner = model.ChoiceA
	case margin < 0:
		res.Winner = model.ChoiceB
	default:
		res.Push = true
	}
	return res
}

// MatchGame finds the record behind a slate pick: by game id first, then by
// the last word of either team name.
func MatchGame(sp model.SlatePick, games []model.GameRecord) (model.GameRecord, bool) {
	if sp.GameID != "" {
		for _, g := range games {
			if g.ID == sp.GameID {
				return g, true
			}
		}
	}
	for _, g := range games {
		if provider.SameTeam(g.HomeTeam, sp.HomeTeam) || provider.SameTeam(g.AwayTeam, sp.AwayTeam) {
			return g, true
		}
	}
	return model.GameRecord{}, false
}
