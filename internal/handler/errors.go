package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"daily-picks-bot/internal/card"
	"daily-picks-bot/internal/service"
)

var errorTexts = []struct {
	err  error
	text string
}{
	{card.ErrPickLocked, "⏰ That game has already started"},
	{card.ErrAlreadySubmitted, "📨 Your card is already submitted"},
	{card.ErrNotSubmitted, "✏️ Submit your card first"},
	{card.ErrIncompleteCard, "✏️ Answer every pick (or pass) before submitting"},
	{card.ErrInvalidPickIndex, "❓ No pick with that number"},
	{card.ErrInvalidChoice, "❓ Choose A, B or pass"},
	{card.ErrLockRequiresChoice, "🔒 Make a pick before locking it"},
	{card.ErrCannotLockPass, "🔒 You cannot lock a passed pick"},
	{card.ErrAlreadyGraded, "✅ Today's card is already graded"},
	{service.ErrEmptySlate, "📭 No games on the slate today"},
	{service.ErrNotInSandbox, "🧪 Only available in sandbox mode. Use /sandbox on"},
	{service.ErrBusy, "⏳ Still working on your last request"},
}

// errorText maps a service error to a reply. Unknown errors are logged.
func errorText(err error) string {
	for _, e := range errorTexts {
		if errors.Is(err, e.err) {
			return e.text
		}
	}
	log.Error().Err(err).Msg("Handler failed")
	return "❌ Something went wrong, please try again later"
}
