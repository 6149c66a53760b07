package model

import "time"

// Tally counts graded picks and how many were correct.
type Tally struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// AllTimeStats are lifetime counters.
type AllTimeStats struct {
	TotalPicks          int              `json:"totalPicks"`
	CorrectPicks        int              `json:"correctPicks"`
	DaysPlayed          int              `json:"daysPlayed"`
	PerfectDays         int              `json:"perfectDays"`
	CurrentPickStreak   int              `json:"currentPickStreak"`
	BestPickStreak      int              `json:"bestPickStreak"`
	CurrentDayStreak    int              `json:"currentDayStreak"`
	BestDayStreak       int              `json:"bestDayStreak"`
	LastPlayedDate      string           `json:"lastPlayedDate,omitempty"`
	LockOfDayWins       int              `json:"lockOfDayWins"`
	BestDailyScore      int              `json:"bestDailyScore"`
	ChallengesCompleted int              `json:"challengesCompleted"`
	BySport             map[Sport]Tally  `json:"bySport"`
	ByMarket            map[Market]Tally `json:"byMarket"`
}

// WindowStats are counters for a calendar window (week or month).
type WindowStats struct {
	Key         string `json:"key"`
	Picks       int    `json:"picks"`
	Correct     int    `json:"correct"`
	PerfectDays int    `json:"perfectDays"`
}

// Stats groups all tracked statistics.
type Stats struct {
	AllTime AllTimeStats `json:"allTime"`
	Weekly  WindowStats  `json:"weekly"`
	Monthly WindowStats  `json:"monthly"`
}

// Progression is a user's accumulated rewards.
type Progression struct {
	XP     int                  `json:"xp"`
	Level  int                  `json:"level"`
	Coins  int                  `json:"coins"`
	Stats  Stats                `json:"stats"`
	Badges map[string]time.Time `json:"badges"`
}

// HasBadge reports whether the badge has been awarded.
func (p *Progression) HasBadge(id string) bool {
	_, ok := p.Badges[id]
	return ok
}

// NewProgression returns a level 1 progression with empty stats.
func NewProgression() Progression {
	return Progression{
		Level: 1,
		Stats: Stats{AllTime: AllTimeStats{
			BySport:  make(map[Sport]Tally),
			ByMarket: make(map[Market]Tally),
		}},
		Badges: make(map[string]time.Time),
	}
}
