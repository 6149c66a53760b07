package model

import "time"

// StateVersion is the current persisted UserState schema.
const StateVersion = 2

// UserState is everything persisted for one user.
type UserState struct {
	Version     int            `json:"version"`
	UserID      int64          `json:"userId"`
	Username    string         `json:"username,omitempty"`
	Progression Progression    `json:"progression"`
	Card        *DailyCard     `json:"card,omitempty"`
	History     []HistoryEntry `json:"history"`
	ScoringMode ScoringMode    `json:"scoringMode"`
	Sandbox     bool           `json:"sandbox"` // card operations route to the testing state
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewUserState returns a fresh state for userID.
func NewUserState(userID int64, now time.Time) *UserState {
	return &UserState{
		Version:     StateVersion,
		UserID:      userID,
		Progression: NewProgression(),
		History:     []HistoryEntry{},
		ScoringMode: ModeClassic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
