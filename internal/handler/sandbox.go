package handler

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/service"
)

// SandboxHandler handles practice mode commands.
type SandboxHandler struct {
	cards   *service.CardService
	clock   *service.Clock
	newRand func() *rand.Rand
}

// NewSandboxHandler creates a new SandboxHandler. Each simulation draws
// from a freshly seeded source.
func NewSandboxHandler(cards *service.CardService, clock *service.Clock) *SandboxHandler {
	return &SandboxHandler{
		cards: cards,
		clock: clock,
		newRand: func() *rand.Rand {
			seed := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(seed, seed>>1|1))
		},
	}
}

// HandleSandbox handles /sandbox [on|off].
func (h *SandboxHandler) HandleSandbox(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := context.Background()

	args := c.Args()
	if len(args) == 0 {
		_, sandbox, err := h.cards.Profile(ctx, sender.ID)
		if err != nil {
			return c.Reply(errorText(err))
		}
		if sandbox {
			return c.Reply("🧪 Sandbox is ON. Progress here is discarded. /simulate plays out today's card, /sandbox off returns to your real card.")
		}
		return c.Reply("🧪 Sandbox is OFF. /sandbox on starts a practice copy of your profile.")
	}

	var (
		v   *service.View
		err error
	)
	switch strings.ToLower(args[0]) {
	case "on":
		v, err = h.cards.EnterSandbox(ctx, sender.ID)
	case "off":
		v, err = h.cards.ExitSandbox(ctx, sender.ID)
	default:
		return c.Reply("usage: /sandbox <on|off>")
	}
	if err != nil {
		return c.Reply(errorText(err))
	}
	if v.Sandbox {
		return c.Reply("🧪 Sandbox ON. Try anything, nothing here touches your real profile.")
	}
	return c.Reply("✅ Sandbox OFF. Back to your real card.")
}

// HandleSimulate handles /simulate.
func (h *SandboxHandler) HandleSimulate(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Simulate(context.Background(), sender.ID, h.newRand())
	if err != nil {
		return c.Reply(errorText(err))
	}
	now := h.clock.Now()
	if err := c.Send(FormatCard(v, now), BuildCardPanel(v.Slate, v.Card, now)); err != nil {
		return err
	}
	if v.Delta != nil {
		return c.Send(FormatDelta(*v.Delta))
	}
	return nil
}
