package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/card"
	"daily-picks-bot/internal/model"
)

// CallbackPrefix is the prefix for all card callback data.
const CallbackPrefix = "card_"

// Callback actions.
const (
	ActionPick    = "pick"    // card_pick_3_A
	ActionLock    = "lock"    // card_lock_3
	ActionSubmit  = "submit"  // card_submit
	ActionCheck   = "check"   // card_check
	ActionRefresh = "refresh" // card_refresh
)

// EncodeCallback encodes an action and its parameters into callback data.
func EncodeCallback(action string, params ...string) string {
	parts := append([]string{action}, params...)
	return CallbackPrefix + strings.Join(parts, "_")
}

// DecodeCallback splits callback data into an action and its parameters.
// Telebot prefixes data buttons with \f; it is stripped here.
func DecodeCallback(data string) (action string, params []string) {
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", nil
	}
	parts := strings.Split(strings.TrimPrefix(data, CallbackPrefix), "_")
	return parts[0], parts[1:]
}

// BuildCardPanel builds the inline keyboard for a card.
// Layout while open:
//   - one row per selectable pick: [A] [B] [Pass] [🔒]
//   - last row: [Submit] [Refresh]
//
// A submitted card only offers a results check.
func BuildCardPanel(slate *model.Slate, c *model.DailyCard, now time.Time) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	if slate == nil || c == nil {
		return markup
	}

	if c.Submitted {
		if !c.Graded {
			markup.Inline(markup.Row(markup.Data("🔄 Check results", EncodeCallback(ActionCheck))))
		}
		return markup
	}

	var rows []tele.Row
	for i, sp := range slate.Picks {
		if i >= len(c.Picks) || card.IsPickLocked(slate, i, now) {
			continue
		}
		up := c.Picks[i]
		idx := strconv.Itoa(i)
		lockText := "🔒"
		if c.LockIndex != nil && *c.LockIndex == i {
			lockText = "🔓"
		}
		rows = append(rows, markup.Row(
			markup.Data(mark(up.Choice == model.ChoiceA, fmt.Sprintf("%d. %s", i+1, sp.OptionA)), EncodeCallback(ActionPick, idx, string(model.ChoiceA))),
			markup.Data(mark(up.Choice == model.ChoiceB, sp.OptionB), EncodeCallback(ActionPick, idx, string(model.ChoiceB))),
			markup.Data(mark(up.Choice == model.ChoicePass, "Pass"), EncodeCallback(ActionPick, idx, string(model.ChoicePass))),
			markup.Data(lockText, EncodeCallback(ActionLock, idx)),
		))
	}
	rows = append(rows, markup.Row(
		markup.Data("✅ Submit", EncodeCallback(ActionSubmit)),
		markup.Data("🔄 Refresh", EncodeCallback(ActionRefresh)),
	))
	markup.Inline(rows...)
	return markup
}

func mark(selected bool, text string) string {
	if selected {
		return "✔️ " + text
	}
	return text
}
