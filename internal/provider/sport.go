package provider

import (
	"fmt"
	"sort"
	"sync"

	"daily-picks-bot/internal/model"
)

// Sport describes how a league is addressed by each upstream provider.
type Sport struct {
	Code     model.Sport
	Name     string
	Emoji    string
	ESPNPath string // e.g. basketball/nba
	OddsKey  string // e.g. basketball_nba
}

// Registry holds the supported sports.
type Registry struct {
	sports map[model.Sport]Sport
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sports: make(map[model.Sport]Sport)}
}

// DefaultSports are the leagues offered out of the box.
func DefaultSports() []Sport {
	return []Sport{
		{Code: "NBA", Name: "NBA Basketball", Emoji: "🏀", ESPNPath: "basketball/nba", OddsKey: "basketball_nba"},
		{Code: "NFL", Name: "NFL Football", Emoji: "🏈", ESPNPath: "football/nfl", OddsKey: "americanfootball_nfl"},
		{Code: "NHL", Name: "NHL Hockey", Emoji: "🏒", ESPNPath: "hockey/nhl", OddsKey: "icehockey_nhl"},
		{Code: "MLB", Name: "MLB Baseball", Emoji: "⚾", ESPNPath: "baseball/mlb", OddsKey: "baseball_mlb"},
		{Code: "NCAAB", Name: "College Basketball", Emoji: "🏀", ESPNPath: "basketball/mens-college-basketball", OddsKey: "basketball_ncaab"},
	}
}

// NewDefaultRegistry returns a registry holding DefaultSports.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range DefaultSports() {
		_ = r.Register(s)
	}
	return r
}

// Register adds or replaces a sport.
func (r *Registry) Register(s Sport) error {
	if s.Code == "" {
		return fmt.Errorf("sport code cannot be empty")
	}
	if s.ESPNPath == "" {
		return fmt.Errorf("sport %s has no scoreboard path", s.Code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sports[s.Code] = s
	return nil
}

// Get looks up a sport by code.
func (r *Registry) Get(code model.Sport) (Sport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sports[code]
	if !ok {
		return Sport{}, fmt.Errorf("%w: %s", ErrUnknownSport, code)
	}
	return s, nil
}

// Codes returns the registered sport codes, sorted.
func (r *Registry) Codes() []model.Sport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]model.Sport, 0, len(r.sports))
	for c := range r.sports {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Count returns the number of registered sports.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sports)
}
