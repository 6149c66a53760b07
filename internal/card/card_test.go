package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-picks-bot/internal/model"
	"daily-picks-bot/internal/scoring"
)

var (
	testNow   = time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	gameStart = testNow.Add(2 * time.Hour)
)

func testSlate(n int) *model.Slate {
	s := &model.Slate{Date: "2026-03-01"}
	for i := 0; i < n; i++ {
		s.Picks = append(s.Picks, model.SlatePick{
			ID:       "p" + string(rune('0'+i)),
			Sport:    "NBA",
			Market:   model.MarketSpread,
			GameTime: gameStart,
		})
	}
	return s
}

func filledCard(t *testing.T, slate *model.Slate, choices ...model.Choice) *model.DailyCard {
	c := New(slate.Date, slate, []string{"sweep"})
	for i, ch := range choices {
		require.NoError(t, Select(c, slate, i, ch, testNow))
	}
	return c
}

func TestNew(t *testing.T) {
	slate := testSlate(3)
	c := New(slate.Date, slate, []string{"sweep", "lock_win", "no_pass"})

	assert.NotEmpty(t, c.ID)
	assert.Len(t, c.Picks, 3)
	for _, p := range c.Picks {
		assert.Equal(t, model.PickUnselected, p.Status)
		assert.Equal(t, model.ChoiceNone, p.Choice)
	}
	assert.Len(t, c.Challenges, 3)
	assert.NoError(t, Validate(c, slate))
}

func TestSelect(t *testing.T) {
	slate := testSlate(2)

	t.Run("selects and reselects", func(t *testing.T) {
		c := New(slate.Date, slate, nil)
		require.NoError(t, Select(c, slate, 0, model.ChoiceA, testNow))
		assert.Equal(t, model.PickSelected, c.Picks[0].Status)
		require.NoError(t, Select(c, slate, 0, model.ChoiceB, testNow))
		assert.Equal(t, model.ChoiceB, c.Picks[0].Choice)
	})

	t.Run("rejected at game start", func(t *testing.T) {
		c := New(slate.Date, slate, nil)
		err := Select(c, slate, 0, model.ChoiceA, gameStart)
		assert.ErrorIs(t, err, ErrPickLocked)
		assert.Equal(t, model.PickUnselected, c.Picks[0].Status)
	})

	t.Run("bad index and choice", func(t *testing.T) {
		c := New(slate.Date, slate, nil)
		assert.ErrorIs(t, Select(c, slate, 5, model.ChoiceA, testNow), ErrInvalidPickIndex)
		assert.ErrorIs(t, Select(c, slate, -1, model.ChoiceA, testNow), ErrInvalidPickIndex)
		assert.ErrorIs(t, Select(c, slate, 0, "C", testNow), ErrInvalidChoice)
		assert.ErrorIs(t, Select(c, slate, 0, model.ChoiceNone, testNow), ErrInvalidChoice)
	})

	t.Run("pass on the lock clears it", func(t *testing.T) {
		c := filledCard(t, slate, model.ChoiceA, model.ChoiceB)
		require.NoError(t, SetLock(c, 1))
		require.NoError(t, Select(c, slate, 1, model.ChoicePass, testNow))
		assert.Nil(t, c.LockIndex)
	})

	t.Run("pass elsewhere keeps the lock", func(t *testing.T) {
		c := filledCard(t, slate, model.ChoiceA, model.ChoiceB)
		require.NoError(t, SetLock(c, 1))
		require.NoError(t, Select(c, slate, 0, model.ChoicePass, testNow))
		require.NotNil(t, c.LockIndex)
		assert.Equal(t, 1, *c.LockIndex)
	})

	t.Run("rejected after submission", func(t *testing.T) {
		c := filledCard(t, slate, model.ChoiceA, model.ChoiceB)
		require.NoError(t, Submit(c, testNow))
		assert.ErrorIs(t, Select(c, slate, 0, model.ChoiceB, testNow), ErrAlreadySubmitted)
		assert.Equal(t, model.ChoiceA, c.Picks[0].Choice)
	})
}

func TestLock(t *testing.T) {
	slate := testSlate(3)

	c := New(slate.Date, slate, nil)
	assert.ErrorIs(t, SetLock(c, 0), ErrLockRequiresChoice)

	c = filledCard(t, slate, model.ChoiceA, model.ChoicePass, model.ChoiceB)
	assert.ErrorIs(t, SetLock(c, 1), ErrCannotLockPass)
	assert.ErrorIs(t, SetLock(c, 3), ErrInvalidPickIndex)
	assert.Nil(t, c.LockIndex)

	require.NoError(t, SetLock(c, 0))
	require.NoError(t, SetLock(c, 2))
	assert.Equal(t, 2, *c.LockIndex)

	locked, err := ToggleLock(c, 2)
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Nil(t, c.LockIndex)

	locked, err = ToggleLock(c, 0)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = ToggleLock(c, 0)
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Nil(t, c.LockIndex)
}

func TestSubmit(t *testing.T) {
	slate := testSlate(3)

	t.Run("incomplete card is rejected untouched", func(t *testing.T) {
		c := filledCard(t, slate, model.ChoiceA, model.ChoiceB)
		assert.ErrorIs(t, Submit(c, testNow), ErrIncompleteCard)
		assert.False(t, c.Submitted)
		assert.Equal(t, model.PickSelected, c.Picks[0].Status)
	})

	t.Run("moves picks and snapshots lock", func(t *testing.T) {
		c := filledCard(t, slate, model.ChoiceA, model.ChoicePass, model.ChoiceB)
		require.NoError(t, SetLock(c, 2))
		require.NoError(t, Submit(c, testNow))

		assert.True(t, c.Submitted)
		assert.Equal(t, testNow, *c.SubmittedAt)
		assert.Equal(t, model.PickPending, c.Picks[0].Status)
		assert.Equal(t, model.PickPassed, c.Picks[1].Status)
		assert.Equal(t, model.PickPending, c.Picks[2].Status)
		assert.False(t, c.Picks[0].IsLockOfDay)
		assert.True(t, c.Picks[2].IsLockOfDay)
		assert.NoError(t, Validate(c, slate))

		assert.ErrorIs(t, Submit(c, testNow), ErrAlreadySubmitted)
		assert.ErrorIs(t, SetLock(c, 0), ErrAlreadySubmitted)
		_, err := ToggleLock(c, 2)
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})
}

func TestGrade(t *testing.T) {
	slate := testSlate(3)
	c := filledCard(t, slate, model.ChoiceA, model.ChoicePass, model.ChoiceB)

	assert.ErrorIs(t, Grade(c, 0, model.PickWon), ErrNotSubmitted)
	require.NoError(t, Submit(c, testNow))

	assert.ErrorIs(t, Grade(c, 1, model.PickWon), ErrPickNotPending)
	assert.ErrorIs(t, Grade(c, 0, model.PickPassed), ErrInvalidTransition)
	assert.ErrorIs(t, Grade(c, 0, model.PickSelected), ErrInvalidTransition)

	require.NoError(t, GradeByWinner(c, 0, model.ChoiceA))
	assert.Equal(t, model.PickWon, c.Picks[0].Status)
	assert.ErrorIs(t, GradeByWinner(c, 0, model.ChoiceB), ErrPickNotPending)
	assert.Equal(t, model.PickWon, c.Picks[0].Status)

	assert.Equal(t, []int{2}, PendingIndexes(c))
	assert.False(t, AllTerminal(c))

	require.NoError(t, GradeByWinner(c, 2, model.ChoiceNone))
	assert.Equal(t, model.PickPush, c.Picks[2].Status)
	assert.True(t, AllTerminal(c))
}

func TestFinalize(t *testing.T) {
	slate := testSlate(2)
	engine := scoring.New(nil)

	c := filledCard(t, slate, model.ChoiceA, model.ChoiceB)
	_, _, err := Finalize(c, engine, model.ModeClassic, testNow)
	assert.ErrorIs(t, err, ErrNotSubmitted)

	require.NoError(t, SetLock(c, 0))
	require.NoError(t, Submit(c, testNow))
	require.NoError(t, GradeByWinner(c, 0, model.ChoiceA))

	_, fired, err := Finalize(c, engine, model.ModeClassic, testNow)
	assert.ErrorIs(t, err, ErrPicksOutstanding)
	assert.False(t, fired)
	assert.False(t, c.Graded)

	require.NoError(t, GradeByWinner(c, 1, model.ChoiceA))
	res, fired, err := Finalize(c, engine, model.ModeCompetitive, testNow)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.True(t, c.Graded)
	assert.Equal(t, model.ModeCompetitive, c.ScoringMode)
	// 10 base, near perfect +5, lock +5.
	assert.Equal(t, 20, res.TotalPoints)

	again, fired, err := Finalize(c, engine, model.ModeClassic, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, res, again)
	assert.Equal(t, testNow, *c.GradedAt)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.PickStatus
		want     bool
	}{
		{model.PickUnselected, model.PickSelected, true},
		{model.PickUnselected, model.PickPending, false},
		{model.PickSelected, model.PickPending, true},
		{model.PickSelected, model.PickWon, false},
		{model.PickPending, model.PickWon, true},
		{model.PickPending, model.PickPassed, true},
		{model.PickWon, model.PickLost, false},
		{model.PickPassed, model.PickPending, false},
		{model.PickPending, model.PickSelected, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidate(t *testing.T) {
	slate := testSlate(2)

	c := New(slate.Date, slate, nil)
	assert.ErrorIs(t, Validate(c, testSlate(3)), ErrSlateMismatch)

	c = filledCard(t, slate, model.ChoiceA, model.ChoicePass)
	bad := 1
	c.LockIndex = &bad
	assert.ErrorIs(t, Validate(c, slate), ErrSlateMismatch)
}
