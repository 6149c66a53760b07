package model

// ScoringMode selects how the Lock of the Day is scored.
type ScoringMode string

// Scoring modes.
const (
	ModeClassic     ScoringMode = "classic"
	ModeCompetitive ScoringMode = "competitive"
)

// Outcome is the evaluated result of one pick.
type Outcome string

// Pick outcomes.
const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomePush      Outcome = "push"
	OutcomePass      Outcome = "pass"
	OutcomeCanceled  Outcome = "canceled"
	OutcomePending   Outcome = "pending"
)

// LockResult is the outcome of the Lock of the Day pick.
type LockResult string

// Lock results. LockNone means no lock was set or the lock is still pending.
const (
	LockNone LockResult = ""
	LockWon  LockResult = "won"
	LockLost LockResult = "lost"
	LockPush LockResult = "push"
	LockPass LockResult = "pass"
)

// PickEvaluation is the per-pick detail of a score.
type PickEvaluation struct {
	Choice        Choice  `json:"choice"`
	CorrectAnswer Choice  `json:"correctAnswer"`
	Outcome       Outcome `json:"outcome"`
	Points        int     `json:"points"`
	IsLockOfDay   bool    `json:"isLockOfDay"`
}

// ScoreResult is the immutable breakdown produced for a card.
type ScoreResult struct {
	TotalPoints    int              `json:"totalPoints"`
	BasePoints     int              `json:"basePoints"`
	BonusPoints    int              `json:"bonusPoints"`
	CorrectCount   int              `json:"correctCount"`
	IncorrectCount int              `json:"incorrectCount"`
	PushCount      int              `json:"pushCount"`
	PassCount      int              `json:"passCount"`
	CanceledCount  int              `json:"canceledCount"`
	PendingCount   int              `json:"pendingCount"`
	GradedCount    int              `json:"gradedCount"`
	BonusesApplied []string         `json:"bonusesApplied"`
	IsPerfect      bool             `json:"isPerfect"`
	IsNearPerfect  bool             `json:"isNearPerfect"`
	LockIndex      int              `json:"lockIndex"`
	LockResult     LockResult       `json:"lockResult"`
	LockPoints     int              `json:"lockPoints"`
	PickResults    []PickEvaluation `json:"pickResults"`
	Mode           ScoringMode      `json:"mode"`
	IsValid        bool             `json:"isValid"`
	Error          string           `json:"error,omitempty"`
}
