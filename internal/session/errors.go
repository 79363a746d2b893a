package session

import (
	"errors"
	"fmt"
)

// ErrInsufficientEnergy is reported by a TurnService when the user lacks the
// energy to send another turn. The controller translates it into the
// InsufficientEnergy state flag; callers match it with errors.Is.
var ErrInsufficientEnergy = errors.New("insufficient energy")

// SessionLoadError wraps a failed history or status fetch. The previous
// session state is preserved when it is returned.
type SessionLoadError struct {
	Cause error
}

func (e *SessionLoadError) Error() string {
	return fmt.Sprintf("session load failed: %v", e.Cause)
}

func (e *SessionLoadError) Unwrap() error { return e.Cause }

// TurnSendError wraps any send failure other than an energy shortage. The
// optimistic user turn stays in the transcript when it is returned.
type TurnSendError struct {
	Cause error
}

func (e *TurnSendError) Error() string {
	return fmt.Sprintf("turn send failed: %v", e.Cause)
}

func (e *TurnSendError) Unwrap() error { return e.Cause }
