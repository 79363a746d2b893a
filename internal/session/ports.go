package session

import (
	"context"

	"questline/internal/models"
)

// TurnService sends one user turn to the narrator and returns its structured
// reply. Implementations report an energy shortage via ErrInsufficientEnergy.
type TurnService interface {
	Send(ctx context.Context, text string) (*models.TurnReply, error)
}

// HistoryService returns the persisted, time-ordered chat history for the
// bound session. The returned page may be partial.
type HistoryService interface {
	GetHistory(ctx context.Context) (*models.HistoryPage, error)
}

// StatusService returns the current stage, progress and mission catalog.
type StatusService interface {
	GetStatus(ctx context.Context) (*models.StatusSnapshot, error)
}

// ChipStore persists suggestion chips across process restarts, keyed by
// session. Get returns (nil, nil) when no record exists. Implementations may
// fail; the controller degrades to empty suggestions and never propagates
// chip store errors.
type ChipStore interface {
	Get(sessionKey string) (*models.SuggestionRecord, error)
	Set(sessionKey string, rec *models.SuggestionRecord) error
	Clear(sessionKey string) error
}

// Wallet is the balance/energy sink the controller applies reply-confirmed
// values to. Balance is read before each send to compute reward deltas.
type Wallet interface {
	Balance() int
	SetBalance(amount int)
	SetEnergy(amount int)
}
