package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/model"
)

// PollIntervals configures the refresh timers.
type PollIntervals struct {
	Live    time.Duration // score refresh while games are live
	Results time.Duration // result checks while games are live
	Idle    time.Duration // both loops when nothing is live or on error
}

// ResultChecker grades outstanding cards and reports how many remain.
type ResultChecker interface {
	CheckAll(ctx context.Context) (int, error)
}

// Sweeper removes long-expired cache entries.
type Sweeper interface {
	ClearOldEntries(ctx context.Context) int
}

// Poller drives the two periodic timers: live score refresh and pending
// result checks. Each backs off to the idle interval when no game is live
// or a pass fails.
type Poller struct {
	games     GameSource
	sports    []model.Sport
	results   ResultChecker
	clock     *Clock
	intervals PollIntervals

	sweeper    Sweeper
	sweepEvery time.Duration

	mu     sync.RWMutex
	live   bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a new Poller instance.
func NewPoller(games GameSource, sports []model.Sport, results ResultChecker, clock *Clock, intervals PollIntervals) *Poller {
	return &Poller{games: games, sports: sports, results: results, clock: clock, intervals: intervals}
}

// WithSweeper adds a third loop that sweeps the cache every interval.
func (p *Poller) WithSweeper(s Sweeper, every time.Duration) *Poller {
	p.sweeper = s
	p.sweepEvery = every
	return p
}

// Start launches the loops. Stop ends them.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(2)
	go p.loop(ctx, "scores", p.RefreshScores)
	go p.loop(ctx, "results", p.CheckResults)
	if p.sweeper != nil && p.sweepEvery > 0 {
		p.wg.Add(1)
		go p.loop(ctx, "sweep", p.Sweep)
	}
	log.Info().
		Dur("live_interval", p.intervals.Live).
		Dur("results_interval", p.intervals.Results).
		Dur("idle_interval", p.intervals.Idle).
		Msg("Poller started")
}

// Stop cancels the loops and waits for them to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	log.Info().Msg("Poller stopped")
}

func (p *Poller) loop(ctx context.Context, name string, tick func(context.Context) time.Duration) {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			next := tick(ctx)
			log.Debug().Str("loop", name).Dur("interval", next).Msg("Next poll scheduled")
			timer.Reset(next)
		}
	}
}

// AnyLive reports whether the last score refresh saw a live game.
func (p *Poller) AnyLive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.live
}

// RefreshScores fetches today's scoreboards through the cache and returns
// the delay before the next refresh.
func (p *Poller) RefreshScores(ctx context.Context) time.Duration {
	today := p.clock.Today()
	live, failed := false, false
	for _, sport := range p.sports {
		snap := p.games.Fetch(ctx, sport, today)
		if !snap.Available || snap.Stale {
			failed = true
			continue
		}
		for _, g := range snap.Games {
			if g.IsLive() {
				live = true
			}
		}
	}

	p.mu.Lock()
	p.live = live
	p.mu.Unlock()

	if failed || !live {
		return p.intervals.Idle
	}
	return p.intervals.Live
}

// CheckResults grades outstanding cards and returns the delay before the
// next check.
func (p *Poller) CheckResults(ctx context.Context) time.Duration {
	outstanding, err := p.results.CheckAll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("Result check pass failed")
		}
		return p.intervals.Idle
	}
	if outstanding == 0 || !p.AnyLive() {
		return p.intervals.Idle
	}
	return p.intervals.Results
}

// Sweep clears old cache entries and returns the delay before the next sweep.
func (p *Poller) Sweep(ctx context.Context) time.Duration {
	if removed := p.sweeper.ClearOldEntries(ctx); removed > 0 {
		log.Info().Int("removed", removed).Msg("Cache entries swept")
	}
	return p.sweepEvery
}
