package card

import "errors"

// Transition errors. A rejected operation never mutates the card.
var (
	ErrPickLocked         = errors.New("pick is locked: game has started")
	ErrAlreadySubmitted   = errors.New("card already submitted")
	ErrNotSubmitted       = errors.New("card not submitted")
	ErrIncompleteCard     = errors.New("every pick needs a choice before submitting")
	ErrInvalidPickIndex   = errors.New("pick index out of range")
	ErrInvalidChoice      = errors.New("choice must be A, B or PASS")
	ErrLockRequiresChoice = errors.New("make a pick before setting it as lock")
	ErrCannotLockPass     = errors.New("cannot lock a passed pick")
	ErrPickNotPending     = errors.New("pick is not awaiting a result")
	ErrInvalidTransition  = errors.New("invalid pick status transition")
	ErrAlreadyGraded      = errors.New("card already graded")
	ErrPicksOutstanding   = errors.New("card still has unresolved picks")
	ErrSlateMismatch      = errors.New("card does not match slate")
	ErrInvalidScore       = errors.New("score result is invalid")
)
