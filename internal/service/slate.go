package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/repository"
)

// SlateSize is the number of picks offered per day.
const SlateSize = 7

// startedGrace admits games that tipped off at most this long ago into
// today's slate.
const startedGrace = 30 * time.Minute

// ErrEmptySlate is returned when no games are available for a date.
var ErrEmptySlate = errors.New("no games available for this date")

// GameSource is the cached scoreboard.
type GameSource interface {
	Fetch(ctx context.Context, sport model.Sport, date string) provider.Snapshot
}

// SlateService generates and stores the daily slate.
type SlateService struct {
	games  GameSource
	slates *repository.SlateRepository
	sports []model.Sport
	clock  *Clock
}

// NewSlateService creates a new SlateService instance.
func NewSlateService(games GameSource, slates *repository.SlateRepository, sports []model.Sport, clock *Clock) *SlateService {
	return &SlateService{games: games, slates: slates, sports: sports, clock: clock}
}

// Get returns the stored slate for date, generating it on first use. A
// stored slate is never regenerated so cards stay aligned with it.
func (s *SlateService) Get(ctx context.Context, date string) (*model.Slate, error) {
	slate, err := s.slates.Get(ctx, date)
	if err == nil {
		return slate, nil
	}
	if !errors.Is(err, repository.ErrSlateNotFound) {
		return nil, err
	}

	slate, err = s.Generate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := s.slates.Save(ctx, slate); err != nil {
		return nil, fmt.Errorf("failed to store slate: %w", err)
	}
	log.Info().
		Str("date", date).
		Int("picks", len(slate.Picks)).
		Str("source", slate.Source).
		Msg("Slate generated")
	return slate, nil
}

// Stored returns the slate already stored for date without generating one.
func (s *SlateService) Stored(ctx context.Context, date string) (*model.Slate, error) {
	return s.slates.Get(ctx, date)
}

// Generate builds a slate from the scoreboards without storing it.
func (s *SlateService) Generate(ctx context.Context, date string) (*model.Slate, error) {
	now := s.clock.Now()
	today := s.clock.Today()

	var games []model.GameRecord
	for _, sport := range s.sports {
		snap := s.games.Fetch(ctx, sport, date)
		for _, g := range snap.Games {
			if g.Status == model.GamePostponed || g.Status == model.GameFinal {
				continue
			}
			if date == today && !g.StartTime.After(now.Add(-startedGrace)) {
				continue
			}
			if g.Sport == "" {
				g.Sport = sport
			}
			games = append(games, g)
		}
	}
	if len(games) == 0 {
		return nil, ErrEmptySlate
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartTime.Before(games[j].StartTime)
	})

	picks := buildPicks(games)
	if len(picks) > SlateSize {
		picks = picks[:SlateSize]
	}

	source := "espn"
	for _, g := range games {
		if g.OddsSource == "oddsapi" {
			source = "oddsapi"
			break
		}
	}
	return &model.Slate{Date: date, Picks: picks, GeneratedAt: now, Source: source}, nil
}

// buildPicks offers spread then total per game in start order, followed by
// moneylines.
func buildPicks(games []model.GameRecord) []model.SlatePick {
	var picks, moneylines []model.SlatePick
	for _, g := range games {
		if g.Spread != nil {
			line := *g.Spread
			picks = append(picks, newPick(g, model.MarketSpread, line,
				fmt.Sprintf("%s %s", teamLabel(g.AwayTeam, g.AwayAbbrev), FormatLine(line)),
				fmt.Sprintf("%s %s", teamLabel(g.HomeTeam, g.HomeAbbrev), FormatLine(-line))))
		}
		if g.OverUnder != nil {
			line := *g.OverUnder
			picks = append(picks, newPick(g, model.MarketTotal, line,
				fmt.Sprintf("Over %.1f", line),
				fmt.Sprintf("Under %.1f", line)))
		}
		if g.AwayMoneyline != nil || g.HomeMoneyline != nil || (g.Spread == nil && g.OverUnder == nil) {
			moneylines = append(moneylines, newPick(g, model.MarketMoneyline, 0,
				teamLabel(g.AwayTeam, g.AwayAbbrev)+formatOdds(g.AwayMoneyline),
				teamLabel(g.HomeTeam, g.HomeAbbrev)+formatOdds(g.HomeMoneyline)))
		}
	}
	return append(picks, moneylines...)
}

func newPick(g model.GameRecord, market model.Market, line float64, a, b string) model.SlatePick {
	return model.SlatePick{
		ID:       fmt.Sprintf("%s-%s-%s", g.Sport, g.ID, market),
		Sport:    g.Sport,
		GameID:   g.ID,
		Market:   market,
		Line:     line,
		OptionA:  a,
		OptionB:  b,
		GameTime: g.StartTime,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
	}
}

func teamLabel(name, abbrev string) string {
	if abbrev != "" {
		return abbrev
	}
	return name
}

// FormatLine renders a spread as "+6.5", "-3" or "PK".
func FormatLine(line float64) string {
	if line == 0 {
		return "PK"
	}
	return fmt.Sprintf("%+g", line)
}

func formatOdds(odds *int) string {
	if odds == nil {
		return ""
	}
	return fmt.Sprintf(" (%+d)", *odds)
}
