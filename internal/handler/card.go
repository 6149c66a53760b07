// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/service"
)

var (
	errUsagePick = errors.New("usage: /pick <number> <a|b|pass>")
	errUsageLock = errors.New("usage: /lock <number>")
)

// CardHandler handles the daily card commands and buttons.
type CardHandler struct {
	cards *service.CardService
	clock *service.Clock
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards *service.CardService, clock *service.Clock) *CardHandler {
	return &CardHandler{cards: cards, clock: clock}
}

// HandleStart handles the /start command.
func (h *CardHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Today(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}

	name := sender.Username
	if name == "" {
		name = sender.FirstName
	}
	welcome := fmt.Sprintf(
		"👋 Welcome %s!\n\n"+
			"Make 7 picks a day, choose one as your Lock of the Day, submit, and earn XP as games finish.\n\n"+
			"Commands:\n"+
			"/card - today's card\n"+
			"/pick <n> <a|b|pass> - make a pick\n"+
			"/lock <n> - toggle Lock of the Day\n"+
			"/submit - submit your card\n"+
			"/check - check results\n"+
			"/profile /badges /challenges /history\n"+
			"/mode - scoring mode\n"+
			"/scores <sport> - live scores\n"+
			"/sandbox - practice mode",
		name,
	)
	if err := c.Send(welcome); err != nil {
		return err
	}
	return h.sendCard(c, v)
}

// HandleCard handles /card and /slate.
func (h *CardHandler) HandleCard(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Today(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	return h.sendCard(c, v)
}

// parsePickArgs reads a 1-based pick number and a choice.
func parsePickArgs(args []string) (int, model.Choice, error) {
	if len(args) != 2 {
		return 0, "", errUsagePick
	}
	idx, err := parseIndex(args[0])
	if err != nil {
		return 0, "", errUsagePick
	}
	var choice model.Choice
	switch strings.ToLower(args[1]) {
	case "a":
		choice = model.ChoiceA
	case "b":
		choice = model.ChoiceB
	case "pass", "p":
		choice = model.ChoicePass
	default:
		return 0, "", errUsagePick
	}
	return idx, choice, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid pick number %q", s)
	}
	return n - 1, nil
}

// HandlePick handles /pick <n> <a|b|pass>.
func (h *CardHandler) HandlePick(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	idx, choice, err := parsePickArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}
	v, err := h.cards.Select(context.Background(), sender.ID, idx, choice)
	if err != nil {
		return c.Reply(errorText(err))
	}
	if err := h.sendCard(c, v); err != nil {
		return err
	}
	return h.sendOutcome(c, v)
}

// HandleLock handles /lock <n>.
func (h *CardHandler) HandleLock(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply(errUsageLock.Error())
	}
	idx, err := parseIndex(args[0])
	if err != nil {
		return c.Reply(errUsageLock.Error())
	}
	v, locked, err := h.cards.ToggleLock(context.Background(), sender.ID, idx)
	if err != nil {
		return c.Reply(errorText(err))
	}
	if locked {
		_ = c.Send(fmt.Sprintf("🔒 Pick %d is your Lock of the Day", idx+1))
	} else {
		_ = c.Send("🔓 Lock of the Day cleared")
	}
	return h.sendCard(c, v)
}

// HandleSubmit handles /submit.
func (h *CardHandler) HandleSubmit(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Submit(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	if err := h.sendCard(c, v); err != nil {
		return err
	}
	return h.sendOutcome(c, v)
}

// HandleCheck handles /check.
func (h *CardHandler) HandleCheck(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.CheckResults(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	if v.Card == nil || !v.Card.Submitted {
		return c.Reply("✏️ Submit your card first, then check back as games finish")
	}
	if report := FormatReport(v.Report); report != "" {
		_ = c.Send(report)
	}
	if err := h.sendCard(c, v); err != nil {
		return err
	}
	return h.sendOutcome(c, v)
}

// HandleReset handles /reset.
func (h *CardHandler) HandleReset(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Reset(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	_ = c.Send("🧹 Card cleared")
	return h.sendCard(c, v)
}

// HandleMode handles /mode [classic|competitive].
func (h *CardHandler) HandleMode(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := context.Background()
	args := c.Args()
	if len(args) == 0 {
		st, _, err := h.cards.Profile(ctx, sender.ID)
		if err != nil {
			return c.Reply(errorText(err))
		}
		return c.Reply(FormatMode(st.ScoringMode))
	}
	v, err := h.cards.SetMode(ctx, sender.ID, strings.ToLower(args[0]))
	if err != nil {
		return c.Reply(errorText(err))
	}
	return c.Reply(FormatMode(v.State.ScoringMode))
}

// HandleCallback handles the card's inline buttons.
func (h *CardHandler) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}
	ctx := context.Background()
	action, params := DecodeCallback(cb.Data)

	var (
		v      *service.View
		err    error
		notice string
	)
	switch action {
	case ActionPick:
		if len(params) != 2 {
			return c.Respond()
		}
		idx, perr := strconv.Atoi(params[0])
		if perr != nil {
			return c.Respond()
		}
		v, err = h.cards.Select(ctx, sender.ID, idx, model.Choice(params[1]))
	case ActionLock:
		if len(params) != 1 {
			return c.Respond()
		}
		idx, perr := strconv.Atoi(params[0])
		if perr != nil {
			return c.Respond()
		}
		var locked bool
		v, locked, err = h.cards.ToggleLock(ctx, sender.ID, idx)
		notice = "🔓 Lock cleared"
		if locked {
			notice = fmt.Sprintf("🔒 Pick %d locked", idx+1)
		}
	case ActionSubmit:
		v, err = h.cards.Submit(ctx, sender.ID)
		notice = "📨 Card submitted"
	case ActionCheck:
		v, err = h.cards.CheckResults(ctx, sender.ID)
		if err == nil {
			notice = FormatReport(v.Report)
		}
	case ActionRefresh:
		v, err = h.cards.Today(ctx, sender.ID)
	default:
		log.Debug().Str("data", cb.Data).Msg("Unknown card callback")
		return c.Respond()
	}

	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: errorText(err), ShowAlert: true})
	}
	_ = c.Respond(&tele.CallbackResponse{Text: notice})

	if err := c.Edit(FormatCard(v, h.clock.Now()), BuildCardPanel(v.Slate, v.Card, h.clock.Now())); err != nil &&
		!errors.Is(err, tele.ErrSameMessageContent) {
		log.Warn().Err(err).Int64("user_id", sender.ID).Msg("Failed to edit card message")
	}
	return h.sendOutcome(c, v)
}

func (h *CardHandler) sendCard(c tele.Context, v *service.View) error {
	now := h.clock.Now()
	return c.Send(FormatCard(v, now), BuildCardPanel(v.Slate, v.Card, now))
}

// sendOutcome announces rewards and badges earned by the call.
func (h *CardHandler) sendOutcome(c tele.Context, v *service.View) error {
	var parts []string
	if v.Delta != nil {
		parts = append(parts, FormatDelta(*v.Delta))
	}
	if badges := FormatBadgesAwarded(v.BadgesAwarded); badges != "" {
		parts = append(parts, badges)
	}
	if len(parts) == 0 {
		return nil
	}
	return c.Send(strings.Join(parts, "\n"))
}
