package handler

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/service"
)

const defaultHistoryLimit = 10

// ProfileHandler handles progression commands.
type ProfileHandler struct {
	cards *service.CardService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(cards *service.CardService) *ProfileHandler {
	return &ProfileHandler{cards: cards}
}

// HandleProfile handles /profile.
func (h *ProfileHandler) HandleProfile(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	st, sandbox, err := h.cards.Profile(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	return c.Reply(FormatProfile(st, sandbox))
}

// HandleBadges handles /badges.
func (h *ProfileHandler) HandleBadges(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	st, _, err := h.cards.Profile(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	return c.Reply(FormatBadges(st.Progression))
}

// HandleChallenges handles /challenges.
func (h *ProfileHandler) HandleChallenges(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	v, err := h.cards.Today(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	return c.Reply(FormatChallenges(v.Card))
}

// HandleHistory handles /history [n].
func (h *ProfileHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	limit := defaultHistoryLimit
	if args := c.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	st, _, err := h.cards.Profile(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorText(err))
	}
	return c.Reply(FormatHistory(st.History, limit))
}
