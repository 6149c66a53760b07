package handler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-picks-bot/internal/card"
	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/progression"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/resolver"
	"daily-picks-bot/internal/service"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSlate() *model.Slate {
	return &model.Slate{
		Date: "2026-03-01",
		Picks: []model.SlatePick{
			{ID: "NBA-1-spread", Sport: "NBA", GameID: "1", Market: model.MarketSpread, Line: 6.5,
				OptionA: "LAL +6.5", OptionB: "BOS -6.5", GameTime: now.Add(2 * time.Hour), AwayTeam: "Lakers", HomeTeam: "Celtics"},
			{ID: "NBA-1-total", Sport: "NBA", GameID: "1", Market: model.MarketTotal, Line: 221.5,
				OptionA: "Over 221.5", OptionB: "Under 221.5", GameTime: now.Add(2 * time.Hour), AwayTeam: "Lakers", HomeTeam: "Celtics"},
			{ID: "NHL-9-moneyline", Sport: "NHL", GameID: "9", Market: model.MarketMoneyline,
				OptionA: "NYR", OptionB: "BOS", GameTime: now.Add(-time.Hour), AwayTeam: "Rangers", HomeTeam: "Bruins"},
		},
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	data := EncodeCallback(ActionPick, "3", "PASS")
	assert.Equal(t, "card_pick_3_PASS", data)

	action, params := DecodeCallback("\f" + data)
	assert.Equal(t, ActionPick, action)
	assert.Equal(t, []string{"3", "PASS"}, params)

	action, params = DecodeCallback(EncodeCallback(ActionSubmit))
	assert.Equal(t, ActionSubmit, action)
	assert.Empty(t, params)

	action, _ = DecodeCallback("shop_buy:key")
	assert.Empty(t, action)
}

func TestBuildCardPanel_OpenCard(t *testing.T) {
	slate := testSlate()
	c := card.New(slate.Date, slate, nil)
	require.NoError(t, card.Select(c, slate, 0, model.ChoiceA, now))
	require.NoError(t, card.SetLock(c, 0))

	markup := BuildCardPanel(slate, c, now)

	// The started NHL game has no buttons.
	require.Len(t, markup.InlineKeyboard, 3)
	first := markup.InlineKeyboard[0]
	require.Len(t, first, 4)
	assert.Equal(t, "✔️ 1. LAL +6.5", first[0].Text)
	assert.Equal(t, "card_pick_0_A", first[0].Unique)
	assert.Equal(t, "card_pick_0_B", first[1].Unique)
	assert.Equal(t, "card_pick_0_PASS", first[2].Unique)
	assert.Equal(t, "🔓", first[3].Text)
	assert.Equal(t, "card_lock_0", first[3].Unique)

	last := markup.InlineKeyboard[2]
	assert.Equal(t, EncodeCallback(ActionSubmit), last[0].Unique)
	assert.Equal(t, EncodeCallback(ActionRefresh), last[1].Unique)
}

func TestBuildCardPanel_SubmittedCard(t *testing.T) {
	slate := testSlate()
	c := card.New(slate.Date, slate, nil)
	c.Submitted = true

	markup := BuildCardPanel(slate, c, now)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, EncodeCallback(ActionCheck), markup.InlineKeyboard[0][0].Unique)

	c.Graded = true
	assert.Empty(t, BuildCardPanel(slate, c, now).InlineKeyboard)
	assert.Empty(t, BuildCardPanel(nil, nil, now).InlineKeyboard)
}

func TestParsePickArgs(t *testing.T) {
	tests := []struct {
		args    []string
		idx     int
		choice  model.Choice
		wantErr bool
	}{
		{[]string{"1", "a"}, 0, model.ChoiceA, false},
		{[]string{"7", "B"}, 6, model.ChoiceB, false},
		{[]string{"3", "pass"}, 2, model.ChoicePass, false},
		{[]string{"3", "p"}, 2, model.ChoicePass, false},
		{[]string{"0", "a"}, 0, "", true},
		{[]string{"x", "a"}, 0, "", true},
		{[]string{"1", "c"}, 0, "", true},
		{[]string{"1"}, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.args), func(t *testing.T) {
			idx, choice, err := parsePickArgs(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsagePick)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.idx, idx)
			assert.Equal(t, tt.choice, choice)
		})
	}
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "⏰ That game has already started", errorText(fmt.Errorf("select: %w", card.ErrPickLocked)))
	assert.Equal(t, "⏳ Still working on your last request", errorText(service.ErrBusy))
	assert.Contains(t, errorText(errors.New("boom")), "Something went wrong")
}

func TestFormatCard(t *testing.T) {
	slate := testSlate()
	c := card.New(slate.Date, slate, nil)
	require.NoError(t, card.Select(c, slate, 1, model.ChoiceB, now))
	st := model.NewUserState(1, now)
	st.Card = c

	out := FormatCard(&service.View{State: st, Card: c, Slate: slate}, now)
	assert.Contains(t, out, "📋 Daily Card 2026-03-01")
	assert.Contains(t, out, "⬜ 1. [NBA] Lakers @ Celtics (2h 0m)")
	assert.Contains(t, out, "→ Under 221.5")
	assert.Contains(t, out, "(LOCKED)")
	assert.Contains(t, out, "1/3 answered")
	assert.Contains(t, out, "No Lock of the Day set")
	assert.NotContains(t, out, "SANDBOX")

	empty := FormatCard(&service.View{State: st, Sandbox: true}, now)
	assert.Contains(t, empty, "SANDBOX")
	assert.Contains(t, empty, "No games")
}

func TestFormatReport(t *testing.T) {
	assert.Empty(t, FormatReport(nil))
	out := FormatReport(&resolver.Report{Graded: []int{0, 1}, Pending: 3, Unavailable: []model.Sport{"NHL"}, Stale: true})
	assert.Contains(t, out, "2 pick(s) graded, 3 still pending")
	assert.Contains(t, out, "No data for NHL")
	assert.Contains(t, out, "cached")
}

func TestFormatDelta(t *testing.T) {
	out := FormatDelta(progression.Delta{
		XP:       120,
		Coins:    15,
		Items:    []progression.LineItem{{Label: "Correct picks", XP: 100, Coins: 10}, {Label: "Lock won", XP: 20, Coins: 5}},
		LevelUps: []int{2},
	})
	assert.Contains(t, out, "Correct picks: +100 XP, +10 🪙")
	assert.Contains(t, out, "Total: +120 XP, +15 🪙")
	assert.Contains(t, out, "Level up! Level 2")
	assert.NotContains(t, out, "Unlocked")

	out = FormatDelta(progression.Delta{XP: 400, OldLevel: 4, NewLevel: 6, LevelUps: []int{6}})
	assert.Contains(t, out, "Level up! Level 6 (Bronze)")
	assert.Contains(t, out, "🥉 Unlocked: Bronze Border")
}

func TestFormatProfile(t *testing.T) {
	st := model.NewUserState(1, now)
	st.Progression.XP = 150
	st.Progression.Level = progression.LevelForXP(150)
	st.Progression.Stats.AllTime.TotalPicks = 4
	st.Progression.Stats.AllTime.CorrectPicks = 3
	st.Progression.Stats.AllTime.BySport[model.Sport("NBA")] = model.Tally{Total: 4, Correct: 3}

	out := FormatProfile(st, true)
	assert.Contains(t, out, "SANDBOX")
	assert.Contains(t, out, fmt.Sprintf("Level %d", st.Progression.Level))
	assert.Contains(t, out, "3/4 correct (75%)")
	assert.Contains(t, out, "NBA: 3/4 (75%)")
}

func TestFormatBadges(t *testing.T) {
	p := model.NewProgression()
	require.True(t, progression.Award(&p, progression.BadgeFirstPick, now))

	out := FormatBadges(p)
	assert.Contains(t, out, fmt.Sprintf("Badges 1/%d", len(progression.Badges())))
	assert.Contains(t, out, "First Pick")
	assert.Equal(t, "🎯 Badge unlocked: First Pick", FormatBadgesAwarded([]string{progression.BadgeFirstPick, "missing"}))
}

func TestFormatChallenges(t *testing.T) {
	assert.Contains(t, FormatChallenges(nil), "No challenges")

	ids := progression.SelectChallengeIDs("2026-03-01")
	c := &model.DailyCard{Date: "2026-03-01"}
	for i, id := range ids {
		c.Challenges = append(c.Challenges, model.ChallengeProgress{ID: id, Completed: i == 0})
	}
	out := FormatChallenges(c)
	first, ok := progression.ChallengeByID(ids[0])
	require.True(t, ok)
	assert.Contains(t, out, "✅ "+first.Icon+" "+first.Name)
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, FormatHistory(nil, 5), "No history")

	history := []model.HistoryEntry{
		{Date: "2026-03-02", Picks: make([]model.UserPick, 7), Graded: true, IsPerfect: true, CorrectCount: 7, TotalPoints: 130, XPEarned: 200},
		{Date: "2026-03-01", Picks: make([]model.UserPick, 7), Submitted: true, CorrectCount: 3, TotalPoints: 30},
		{Date: "2026-02-28", Picks: make([]model.UserPick, 7), Graded: true},
	}
	out := FormatHistory(history, 2)
	assert.Contains(t, out, "💯 2026-03-02: 7/7 correct, 130 pts, +200 XP")
	assert.Contains(t, out, "📨 2026-03-01: 3/7 correct, 30 pts (ungraded)")
	assert.NotContains(t, out, "2026-02-28")
}

func TestFormatMode(t *testing.T) {
	assert.Contains(t, FormatMode(model.ModeClassic), "Classic scoring")
	competitive := FormatMode(model.ModeCompetitive)
	assert.Contains(t, competitive, "Competitive scoring")
	assert.Contains(t, competitive, "⚠️")
}

func TestFormatStatus(t *testing.T) {
	out := FormatStatus(provider.APIStatus{Available: true, HasOddsKey: true, Source: "oddsapi"}, true)
	assert.Contains(t, out, "TheOddsAPI")
	assert.Contains(t, out, "Games live: yes")
}

func TestFormatScoreboard(t *testing.T) {
	sport := provider.Sport{Code: "NBA", Name: "Basketball", Emoji: "🏀"}
	assert.Contains(t, FormatScoreboard(sport, provider.Snapshot{}, now), "unavailable")
	assert.Contains(t, FormatScoreboard(sport, provider.Snapshot{Available: true}, now), "No games")

	snap := provider.Snapshot{Available: true, Stale: true, Games: []model.GameRecord{{
		ID: "1", AwayAbbrev: "LAL", HomeAbbrev: "BOS", AwayScore: 101, HomeScore: 99, Status: model.GameFinal,
	}}}
	out := FormatScoreboard(sport, snap, now)
	assert.Contains(t, out, "LAL 101 - BOS 99 · FINAL")
	assert.Contains(t, out, "Cached")
}
