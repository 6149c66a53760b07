package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/cache"
	"daily-picks-bot/internal/model"
)

// TTLs for cached scoreboards and odds.
type TTLs struct {
	Live      time.Duration
	Final     time.Duration
	Odds      time.Duration
	Completed time.Duration // every game on the board has finished
}

// DefaultTTLs returns the standard TTLs.
func DefaultTTLs() TTLs {
	return TTLs{Live: time.Minute, Final: 10 * time.Minute, Odds: 10 * time.Minute, Completed: cache.DefaultCompletedTTL}
}

// Snapshot is the result of a cached scoreboard fetch.
type Snapshot struct {
	Games     []model.GameRecord
	Stale     bool // served from an expired entry after an upstream failure
	Available bool // false when neither upstream nor cache had data
}

// Scoreboard fronts scoreboard and odds fetchers with the cache.
type Scoreboard struct {
	registry *Registry
	espn     ScoreboardFetcher
	odds     OddsFetcher
	cache    *cache.Cache
	ttls     TTLs

	mu           sync.RWMutex
	oddsDisabled bool // rate limited for the rest of the session
	oddsKeyValid bool
	lastSource   string
	lastStale    bool
	unavailable  bool
}

// NewScoreboard creates a cached scoreboard. odds may be nil.
func NewScoreboard(registry *Registry, espn ScoreboardFetcher, odds OddsFetcher, c *cache.Cache, ttls TTLs) *Scoreboard {
	def := DefaultTTLs()
	if ttls.Live <= 0 {
		ttls.Live = def.Live
	}
	if ttls.Final <= 0 {
		ttls.Final = def.Final
	}
	if ttls.Odds <= 0 {
		ttls.Odds = def.Odds
	}
	if ttls.Completed <= 0 {
		ttls.Completed = def.Completed
	}
	return &Scoreboard{
		registry:     registry,
		espn:         espn,
		odds:         odds,
		cache:        c,
		ttls:         ttls,
		oddsKeyValid: odds != nil,
		lastSource:   "espn",
	}
}

// Registry returns the sport registry.
func (s *Scoreboard) Registry() *Registry {
	return s.registry
}

func scoreboardKey(sport model.Sport, date string) string {
	return fmt.Sprintf("espn_%s_scoreboard_%s", sport, date)
}

func oddsKey(sport model.Sport) string {
	return fmt.Sprintf("odds_%s", sport)
}

// Fetch returns games for sport on date. It never fails: on upstream error
// it serves the last cached value marked stale, or an empty unavailable snapshot.
func (s *Scoreboard) Fetch(ctx context.Context, code model.Sport, date string) Snapshot {
	key := scoreboardKey(code, date)

	// Get drops expired entries, so take the fallback copy first.
	var stale []model.GameRecord
	hasStale := s.cache.GetStale(ctx, key, &stale)

	var games []model.GameRecord
	if s.cache.Get(ctx, key, &games) {
		return Snapshot{Games: games, Available: true}
	}

	sport, err := s.registry.Get(code)
	if err != nil {
		log.Warn().Err(err).Str("sport", string(code)).Msg("Scoreboard requested for unknown sport")
		return Snapshot{}
	}

	games, err = s.espn.FetchScoreboard(ctx, sport, date)
	if err != nil {
		log.Warn().Err(err).Str("sport", string(code)).Str("date", date).Msg("Scoreboard fetch failed")
		s.setStale(true, !hasStale)
		if hasStale {
			s.cache.SetStale(ctx, key, stale)
			return Snapshot{Games: stale, Stale: true, Available: true}
		}
		return Snapshot{}
	}
	s.setStale(false, false)

	games = s.mergeOdds(ctx, sport, games)

	s.cache.Set(ctx, key, games, s.ttlFor(ctx, games))

	return Snapshot{Games: games, Available: true}
}

// ttlFor picks the cache lifetime for a fresh board. Finished games are
// recorded so a board that is entirely complete is kept for the long TTL.
func (s *Scoreboard) ttlFor(ctx context.Context, games []model.GameRecord) time.Duration {
	ttl := s.ttls.Final
	ids := make([]string, 0, len(games))
	var finals []string
	for _, g := range games {
		ids = append(ids, g.ID)
		if g.IsLive() {
			ttl = s.ttls.Live
		}
		if g.Status == model.GameFinal {
			finals = append(finals, g.ID)
		}
	}
	s.cache.MarkGamesComplete(ctx, finals...)

	if ttl == s.ttls.Final && s.cache.IsGameComplete(ctx, ids...) {
		return s.ttls.Completed
	}
	return ttl
}

// mergeOdds overlays odds provider lines onto games matched by team name.
func (s *Scoreboard) mergeOdds(ctx context.Context, sport Sport, games []model.GameRecord) []model.GameRecord {
	lines, ok := s.oddsLines(ctx, sport)
	if !ok {
		return games
	}

	for i := range games {
		g := &games[i]
		for _, l := range lines {
			if !SameTeam(g.HomeTeam, l.HomeTeam) || !SameTeam(g.AwayTeam, l.AwayTeam) {
				continue
			}
			if l.AwaySpread != nil {
				g.Spread = l.AwaySpread
			}
			if l.Total != nil {
				g.OverUnder = l.Total
			}
			g.HomeMoneyline = l.HomeMoneyline
			g.AwayMoneyline = l.AwayMoneyline
			g.OddsSource = "oddsapi"
			break
		}
	}
	return games
}

func (s *Scoreboard) oddsLines(ctx context.Context, sport Sport) ([]OddsLine, bool) {
	if s.odds == nil {
		return nil, false
	}

	key := oddsKey(sport.Code)
	var stale []OddsLine
	hasStale := s.cache.GetStale(ctx, key, &stale)

	var lines []OddsLine
	if s.cache.Get(ctx, key, &lines) {
		return lines, true
	}

	s.mu.RLock()
	disabled, valid := s.oddsDisabled, s.oddsKeyValid
	s.mu.RUnlock()

	if !disabled && valid {
		fresh, err := s.odds.FetchOdds(ctx, sport)
		if err == nil {
			s.cache.Set(ctx, key, fresh, s.ttls.Odds)
			s.setSource("oddsapi")
			return fresh, true
		}

		s.mu.Lock()
		switch {
		case errors.Is(err, ErrUnauthorized):
			s.oddsKeyValid = false
			log.Error().Str("sport", string(sport.Code)).Msg("Odds API key rejected, falling back to ESPN lines")
		case errors.Is(err, ErrRateLimited):
			s.oddsDisabled = true
			log.Warn().Str("sport", string(sport.Code)).Msg("Odds API rate limited, disabled for this session")
		default:
			log.Warn().Err(err).Str("sport", string(sport.Code)).Msg("Odds fetch failed")
		}
		s.mu.Unlock()
	}

	if hasStale {
		s.cache.SetStale(ctx, key, stale)
		s.setSource("oddsapi-cached")
		return stale, true
	}
	s.setSource("espn")
	return nil, false
}

func (s *Scoreboard) setSource(src string) {
	s.mu.Lock()
	s.lastSource = src
	s.mu.Unlock()
}

func (s *Scoreboard) setStale(stale, unavailable bool) {
	s.mu.Lock()
	s.lastStale = stale
	s.unavailable = unavailable
	s.mu.Unlock()
}

// APIStatus summarizes which upstream is currently feeding lines.
type APIStatus struct {
	Available       bool
	UsingCachedData bool
	HasOddsKey      bool
	OddsDisabled    bool
	Source          string
}

// Status returns the current API status.
func (s *Scoreboard) Status() APIStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return APIStatus{
		Available:       !s.unavailable,
		UsingCachedData: s.lastStale,
		HasOddsKey:      s.oddsKeyValid,
		OddsDisabled:    s.oddsDisabled,
		Source:          s.lastSource,
	}
}

// Badge is the one-line source notice shown under the slate.
func (a APIStatus) Badge() string {
	switch {
	case a.UsingCachedData:
		return "Using Cached Odds - No Live Updates"
	case a.Source == "oddsapi-cached" || a.OddsDisabled:
		return "Using Last Known Odds"
	case a.Source == "oddsapi":
		return "Lines Powered By TheOddsAPI - Real-Time Odds"
	default:
		return "Lines Powered By ESPN - Real-Time Odds"
	}
}
