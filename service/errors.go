package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds blocks start-hand and raise without mutating
	// any state; it is recoverable and user-facing.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState means the caller invoked an action that is not
	// legal for the current street or session phase. Callers tracking
	// LegalActions should never trigger it, so it usually indicates a
	// caller bug.
	ErrInvalidState = errors.New("action not legal in current state")

	// ErrNoActiveHand and ErrHandInProgress are the two concrete
	// invalid-state cases start/act operations report.
	ErrNoActiveHand   = fmt.Errorf("no active hand: %w", ErrInvalidState)
	ErrHandInProgress = fmt.Errorf("hand already in progress: %w", ErrInvalidState)
)
