// Package model defines the data models for the daily picks bot.
package model

import "time"

// Sport identifies a league on the slate (NBA, NFL, ...).
type Sport string

// GameStatus is the normalized lifecycle status of an external game.
type GameStatus string

// Game statuses.
const (
	GameScheduled GameStatus = "scheduled"
	GameLive      GameStatus = "live"
	GameHalftime  GameStatus = "halftime"
	GameFinal     GameStatus = "final"
	GamePostponed GameStatus = "postponed"
	GameDelayed   GameStatus = "delayed"
)

// GameRecord is normalized external game state as produced by a provider.
type GameRecord struct {
	ID           string     `json:"id"`
	Sport        Sport      `json:"sport"`
	HomeTeam     string     `json:"homeTeam"`
	AwayTeam     string     `json:"awayTeam"`
	HomeAbbrev   string     `json:"homeAbbrev,omitempty"`
	AwayAbbrev   string     `json:"awayAbbrev,omitempty"`
	HomeScore    int        `json:"homeScore"`
	AwayScore    int        `json:"awayScore"`
	Status       GameStatus `json:"status"`
	StatusDetail string     `json:"statusDetail,omitempty"`
	Period       int        `json:"period,omitempty"`
	Clock        string     `json:"clock,omitempty"`
	StartTime    time.Time  `json:"startTime"`

	// Odds, when a provider supplied them. Spread is the away team's line.
	Spread        *float64 `json:"spread,omitempty"`
	OverUnder     *float64 `json:"overUnder,omitempty"`
	HomeMoneyline *int     `json:"homeMoneyline,omitempty"`
	AwayMoneyline *int     `json:"awayMoneyline,omitempty"`
	OddsSource    string   `json:"oddsSource,omitempty"`
}

// IsLive reports whether the game is in progress.
func (g GameRecord) IsLive() bool {
	return g.Status == GameLive || g.Status == GameHalftime
}

// Market is the kind of prediction offered for a game.
type Market string

// Markets.
const (
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
	MarketMoneyline Market = "moneyline"
)

// Choice is a user's answer for a pick. The zero value means no choice yet.
type Choice string

// Choices.
const (
	ChoiceNone Choice = ""
	ChoiceA    Choice = "A"
	ChoiceB    Choice = "B"
	ChoicePass Choice = "PASS"
)

// Opposite returns the other side of a two-way choice.
func (c Choice) Opposite() Choice {
	switch c {
	case ChoiceA:
		return ChoiceB
	case ChoiceB:
		return ChoiceA
	default:
		return ChoiceNone
	}
}

// Valid reports whether c is a selectable choice.
func (c Choice) Valid() bool {
	return c == ChoiceA || c == ChoiceB || c == ChoicePass
}

// SlatePick is one prediction offered on a day's slate.
type SlatePick struct {
	ID       string    `json:"id"`
	Sport    Sport     `json:"sport"`
	GameID   string    `json:"gameId"`
	Market   Market    `json:"market"`
	Line     float64   `json:"line"`
	OptionA  string    `json:"optionA"`
	OptionB  string    `json:"optionB"`
	GameTime time.Time `json:"gameTime"`
	HomeTeam string    `json:"homeTeam"`
	AwayTeam string    `json:"awayTeam"`
}

// Slate is the fixed set of picks for a date.
type Slate struct {
	Date        string      `json:"date"`
	Picks       []SlatePick `json:"picks"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Source      string      `json:"source"`
}

// PickStatus is the lifecycle state of a single user pick.
type PickStatus string

// Pick statuses.
const (
	PickUnselected PickStatus = "unselected"
	PickSelected   PickStatus = "selected"
	PickPending    PickStatus = "pending"
	PickWon        PickStatus = "won"
	PickLost       PickStatus = "lost"
	PickPush       PickStatus = "push"
	PickPassed     PickStatus = "passed"
)

// IsTerminal reports whether no further transition is possible.
func (s PickStatus) IsTerminal() bool {
	switch s {
	case PickWon, PickLost, PickPush, PickPassed:
		return true
	}
	return false
}

// UserPick is a user's answer to one SlatePick.
type UserPick struct {
	Choice      Choice     `json:"choice"`
	Status      PickStatus `json:"status"`
	IsLockOfDay bool       `json:"isLockOfDay"`
}

// ChallengeProgress tracks one of the day's selected challenges.
type ChallengeProgress struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// DailyCard is a user's set of picks for one date.
type DailyCard struct {
	ID          string              `json:"id"`
	Date        string              `json:"date"`
	Picks       []UserPick          `json:"picks"`
	LockIndex   *int                `json:"lockIndex"`
	Submitted   bool                `json:"submitted"`
	SubmittedAt *time.Time          `json:"submittedAt,omitempty"`
	Graded      bool                `json:"graded"`
	GradedAt    *time.Time          `json:"gradedAt,omitempty"`
	ScoringMode ScoringMode         `json:"scoringMode,omitempty"`
	Score       *ScoreResult        `json:"score,omitempty"`
	Challenges  []ChallengeProgress `json:"challenges"`
}

// HistoryEntry archives a past card with the rewards it earned.
type HistoryEntry struct {
	ID                  string      `json:"id"`
	Date                string      `json:"date"`
	Picks               []UserPick  `json:"picks"`
	Submitted           bool        `json:"submitted"`
	Graded              bool        `json:"graded"`
	CorrectCount        int         `json:"correctCount"`
	TotalPoints         int         `json:"totalPoints"`
	IsPerfect           bool        `json:"isPerfect"`
	LockWon             bool        `json:"lockWon"`
	ScoringMode         ScoringMode `json:"scoringMode,omitempty"`
	XPEarned            int         `json:"xpEarned"`
	CoinsEarned         int         `json:"coinsEarned"`
	ChallengesCompleted []string    `json:"challengesCompleted,omitempty"`
}

// StoredResult is a resolved outcome for a slate pick, kept apart from any card.
type StoredResult struct {
	PickID     string    `json:"pickId"`
	Winner     Choice    `json:"winner"` // ChoiceNone for a push
	Push       bool      `json:"push"`
	FinalScore string    `json:"finalScore"`
	ResolvedAt time.Time `json:"resolvedAt"`
}
