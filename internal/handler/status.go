package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/service"
)

// StatusHandler handles scoreboard and data provider commands.
type StatusHandler struct {
	scores *provider.Scoreboard
	poller *service.Poller
	cards  *service.CardService
	clock  *service.Clock
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(scores *provider.Scoreboard, poller *service.Poller, cards *service.CardService, clock *service.Clock) *StatusHandler {
	return &StatusHandler{scores: scores, poller: poller, cards: cards, clock: clock}
}

// HandleStatus handles /status.
func (h *StatusHandler) HandleStatus(c tele.Context) error {
	return c.Reply(FormatStatus(h.scores.Status(), h.poller.AnyLive()))
}

// HandleScores handles /scores <sport>.
func (h *StatusHandler) HandleScores(c tele.Context) error {
	registry := h.scores.Registry()
	args := c.Args()
	if len(args) != 1 {
		codes := registry.Codes()
		names := make([]string, len(codes))
		for i, code := range codes {
			names[i] = strings.ToLower(string(code))
		}
		return c.Reply(fmt.Sprintf("usage: /scores <%s>", strings.Join(names, "|")))
	}

	sport, err := registry.Get(model.Sport(strings.ToUpper(args[0])))
	if err != nil {
		return c.Reply(fmt.Sprintf("❓ Unknown sport %q", args[0]))
	}
	snap := h.scores.Fetch(context.Background(), sport.Code, h.clock.Today())
	return c.Reply(FormatScoreboard(sport, snap, h.clock.Now()))
}

// HandleCheckAll handles the admin /check_all command.
func (h *StatusHandler) HandleCheckAll(c tele.Context) error {
	outstanding, err := h.cards.CheckAll(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Manual result check failed")
		return c.Reply(errorText(err))
	}
	return c.Reply(fmt.Sprintf("🔎 Results checked, %d card(s) still pending", outstanding))
}
