package service

import (
	"context"
	"sync"
	"time"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/pkg/kv"
	"daily-picks-bot/internal/pkg/lock"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/repository"
	"daily-picks-bot/internal/resolver"
	"daily-picks-bot/internal/scoring"
)

const userID int64 = 1001

var day1 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeGames struct {
	mu    sync.Mutex
	snaps map[model.Sport]provider.Snapshot
}

func (f *fakeGames) Fetch(_ context.Context, sport model.Sport, _ string) provider.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snaps[sport]
	snap.Games = append([]model.GameRecord(nil), snap.Games...)
	return snap
}

func (f *fakeGames) set(sport model.Sport, games ...model.GameRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[sport] = provider.Snapshot{Available: true, Games: games}
}

func (f *fakeGames) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = map[model.Sport]provider.Snapshot{}
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

// scheduledGames yields a six pick slate:
// 0 g1 spread, 1 g1 total, 2 g2 spread, 3 g2 total, 4 h1 moneyline, 5 g2 moneyline.
func scheduledGames() (nba, nhl []model.GameRecord) {
	nba = []model.GameRecord{
		{ID: "g2", Sport: "NBA", HomeTeam: "Denver Nuggets", AwayTeam: "Phoenix Suns",
			Status: model.GameScheduled, StartTime: day1.Add(8 * time.Hour),
			Spread: fptr(-3), OverUnder: fptr(230), HomeMoneyline: iptr(130), AwayMoneyline: iptr(-150)},
		{ID: "g1", Sport: "NBA", HomeTeam: "Boston Celtics", AwayTeam: "Los Angeles Lakers",
			HomeAbbrev: "BOS", AwayAbbrev: "LAL",
			Status: model.GameScheduled, StartTime: day1.Add(7 * time.Hour),
			Spread: fptr(6.5), OverUnder: fptr(221.5)},
	}
	nhl = []model.GameRecord{
		{ID: "h1", Sport: "NHL", HomeTeam: "Boston Bruins", AwayTeam: "Toronto Maple Leafs",
			Status: model.GameScheduled, StartTime: day1.Add(6 * time.Hour)},
	}
	return nba, nhl
}

// winners of scheduledGames once finishGames has run.
var winners = []model.Choice{model.ChoiceB, model.ChoiceB, model.ChoiceA, model.ChoiceB, model.ChoiceA, model.ChoiceA}

func finishGames(games *fakeGames) {
	nba, nhl := scheduledGames()
	for i := range nba {
		nba[i].Status = model.GameFinal
	}
	nba[0].HomeScore, nba[0].AwayScore = 100, 110
	nba[1].HomeScore, nba[1].AwayScore = 112, 104
	nhl[0].Status = model.GameFinal
	nhl[0].HomeScore, nhl[0].AwayScore = 2, 3
	games.set("NBA", nba...)
	games.set("NHL", nhl...)
}

type fixture struct {
	now    time.Time
	games  *fakeGames
	store  *kv.MemoryStore
	states *repository.StateRepository
	slates *SlateService
	cards  *CardService
}

func newFixture() *fixture {
	f := &fixture{
		now:   day1,
		games: &fakeGames{snaps: map[model.Sport]provider.Snapshot{}},
		store: kv.NewMemoryStore(),
	}
	nba, nhl := scheduledGames()
	f.games.set("NBA", nba...)
	f.games.set("NHL", nhl...)

	clock := NewClock(func() time.Time { return f.now }, time.UTC)
	f.states = repository.NewStateRepository(f.store)
	f.slates = NewSlateService(f.games, repository.NewSlateRepository(f.store), []model.Sport{"NBA", "NHL"}, clock)
	res := resolver.New(f.games, repository.NewResultRepository(f.store))
	f.cards = NewCardService(f.states, f.slates, res, scoring.New(nil), lock.NewUserLock(), clock)
	return f
}
