// Package session implements the progression controller: loading and
// reconciling a narrative session, sending turns, and raising stage rewards.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questline/internal/models"
	"questline/internal/transcript"
)

// Deps are the collaborators a Controller is constructed with.
type Deps struct {
	Turns   TurnService
	History HistoryService
	Status  StatusService
	Chips   ChipStore
	Wallet  Wallet
	Logger  *zap.Logger
}

// Controller owns one narrative session: the transcript log, the observable
// SessionState value, and all side effects of loading and sending turns.
// The lock is never held across external calls, so State stays responsive
// and the optimistic user turn is observable while a send is in flight.
// Callers are still expected to serialize SendTurn; overlapping sends
// interleave their appended turns in settlement order.
type Controller struct {
	mu        sync.Mutex
	turns     TurnService
	history   HistoryService
	status    StatusService
	chips     ChipStore
	wallet    Wallet
	logger    *zap.Logger
	turnLog   *TurnLog
	state     models.SessionState
	catalog   []models.Mission
	loadedKey string
	listener  func(models.SessionState)
}

func NewController(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		turns:   d.Turns,
		history: d.History,
		status:  d.Status,
		chips:   d.Chips,
		wallet:  d.Wallet,
		logger:  logger,
		turnLog: NewTurnLog(),
		state:   models.SessionState{CurrentStage: 1},
	}
}

// SetListener registers a callback invoked with every replaced SessionState.
// The callback runs outside the controller's lock, so it may call back into
// controller methods.
func (c *Controller) SetListener(fn func(models.SessionState)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// State returns the current SessionState value.
func (c *Controller) State() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// unlockAndPublish releases the lock, then notifies the listener with the
// state as it was at release time.
func (c *Controller) unlockAndPublish() {
	st := c.state
	fn := c.listener
	c.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// LoadSession fetches history and status for the given narrative identity,
// reconciles the transcript, and restores cached suggestion chips. A repeat
// load for the already-loaded identity short-circuits unless force is set.
// On fetch failure the previous state is preserved and a *SessionLoadError
// is returned.
func (c *Controller) LoadSession(ctx context.Context, sessionKey string, force bool) (models.SessionState, error) {
	c.mu.Lock()
	if c.loadedKey == sessionKey && !force {
		st := c.state
		c.mu.Unlock()
		return st, nil
	}
	c.state.Loading = true
	c.unlockAndPublish()

	var (
		page *models.HistoryPage
		snap *models.StatusSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.history.GetHistory(gctx)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		page = p
		return nil
	})
	g.Go(func() error {
		s, err := c.status.GetStatus(gctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		snap = s
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn("session load failed", zap.String("session", sessionKey), zap.Error(err))
		c.mu.Lock()
		c.state.Loading = false
		st := c.state
		c.unlockAndPublish()
		return st, &SessionLoadError{Cause: err}
	}

	rec := c.chipRecord(sessionKey)
	entries := transcript.Reconcile(snap.Catalog, page.Turns, snap.CurrentStage)

	c.mu.Lock()
	c.turnLog.Replace(entries)
	c.catalog = make([]models.Mission, len(snap.Catalog))
	copy(c.catalog, snap.Catalog)
	c.state = applyLoad(c.state, snap, page, c.turnLog.Entries(), chipsFor(rec, c.turnLog.LastNarratorTurn()))
	c.loadedKey = sessionKey
	st := c.state
	c.unlockAndPublish()

	c.logger.Debug("session loaded",
		zap.String("session", sessionKey),
		zap.Int("turns", len(page.Turns)),
		zap.Int("stage", snap.CurrentStage))
	return st, nil
}

// chipRecord reads the cached chip record. Chip store failures degrade to nil.
func (c *Controller) chipRecord(sessionKey string) *models.SuggestionRecord {
	rec, err := c.chips.Get(sessionKey)
	if err != nil {
		c.logger.Warn("chip store read failed", zap.String("session", sessionKey), zap.Error(err))
		return nil
	}
	return rec
}

// chipsFor returns the cached chips only when they belong to the
// transcript's latest narrator turn.
func chipsFor(rec *models.SuggestionRecord, last *models.Turn) []string {
	if rec == nil || last == nil || last.ID != rec.TurnID {
		return nil
	}
	return rec.Chips
}

// SendTurn sends one user turn. Empty or whitespace-only input is a no-op
// returning (nil, nil). The user turn is appended optimistically before the
// network call and is kept even when the call fails. IsTyping is cleared on
// every outcome.
func (c *Controller) SendTurn(ctx context.Context, text string) (*models.TurnReply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	c.mu.Lock()
	sessionKey := c.loadedKey
	missionID := c.missionIDForStage(c.state.CurrentStage)
	userTurn := models.Turn{
		ID:        uuid.NewString(),
		Text:      trimmed,
		IsUser:    true,
		Timestamp: time.Now(),
		MissionID: missionID,
		Pending:   true,
	}
	c.turnLog.Append(userTurn)
	c.state = applySendStart(c.state, c.turnLog.Entries())
	balanceBefore := c.wallet.Balance()
	c.unlockAndPublish()

	if err := c.chips.Clear(sessionKey); err != nil {
		c.logger.Warn("chip store clear failed", zap.Error(err))
	}

	reply, sendErr := c.turns.Send(ctx, trimmed)

	c.mu.Lock()
	// The session may have been cleared or replaced while the call was in
	// flight; if so, drop the reply's effects but still settle the flag.
	stale := c.loadedKey != sessionKey

	if sendErr != nil {
		insufficient := errors.Is(sendErr, ErrInsufficientEnergy)
		if !stale {
			c.state = applySendFailure(c.state, c.turnLog.Entries(), insufficient)
		}
		c.state.IsTyping = false
		c.unlockAndPublish()
		c.logger.Warn("turn send failed", zap.Bool("insufficient_energy", insufficient), zap.Error(sendErr))
		if insufficient {
			return nil, fmt.Errorf("send turn: %w", sendErr)
		}
		return nil, &TurnSendError{Cause: sendErr}
	}

	if stale {
		c.state.IsTyping = false
		c.unlockAndPublish()
		return reply, nil
	}

	c.turnLog.ConfirmTurn(userTurn.ID)
	narrator := models.Turn{
		ID:         uuid.NewString(),
		Text:       reply.Content,
		IsUser:     false,
		Timestamp:  time.Now(),
		MissionID:  missionID,
		Completion: reply.MissionCompleted,
	}
	c.turnLog.Append(narrator)

	if reply.NewEnergy != nil {
		c.wallet.SetEnergy(*reply.NewEnergy)
	}

	st := applyReply(c.state, reply, c.turnLog.Entries(), balanceBefore)
	if st.Reward != nil && reply.MissionCompleted {
		if c.appendNextMissionCard(st.Reward.StageOrderIndex + 1) {
			st.Transcript = c.turnLog.Entries()
		}
	}

	// Applied after reward processing so the delta above sees the balance as
	// it was before this turn.
	if reply.NewBalance != nil {
		c.wallet.SetBalance(*reply.NewBalance)
	}

	st.IsTyping = false
	c.state = st
	c.unlockAndPublish()

	if len(reply.Suggestions) > 0 {
		rec := &models.SuggestionRecord{TurnID: narrator.ID, Chips: reply.Suggestions}
		if err := c.chips.Set(sessionKey, rec); err != nil {
			c.logger.Warn("chip store write failed", zap.Error(err))
		}
	}
	return reply, nil
}

// appendNextMissionCard appends an intro card for the mission at the given
// order index, if the catalog has one and no card exists yet.
func (c *Controller) appendNextMissionCard(orderIndex int) bool {
	for _, m := range c.catalog {
		if m.OrderIndex != orderIndex {
			continue
		}
		if c.turnLog.HasMissionCard(m.ID) {
			return false
		}
		c.turnLog.Append(models.MissionCard{
			MissionID:   m.ID,
			OrderIndex:  m.OrderIndex,
			Title:       m.Title,
			Description: m.Description,
		})
		return true
	}
	return false
}

func (c *Controller) missionIDForStage(stage int) int64 {
	for _, m := range c.catalog {
		if m.OrderIndex == stage {
			return m.ID
		}
	}
	return 0
}

// AcknowledgeStageReward marks the pending reward as seen. The reward stays
// set so the shell can animate its dismissal. Without a pending reward this
// is a no-op.
func (c *Controller) AcknowledgeStageReward() {
	c.mu.Lock()
	if c.state.Reward == nil || c.state.Reward.Acknowledged {
		c.mu.Unlock()
		return
	}
	r := *c.state.Reward
	r.Acknowledged = true
	c.state.Reward = &r
	c.unlockAndPublish()
}

// ClearSession drops the transcript and resets the session to its initial
// state. The mission catalog cache key is cleared so the next LoadSession
// always refetches.
func (c *Controller) ClearSession() {
	c.mu.Lock()
	c.turnLog.Clear()
	sessionKey := c.loadedKey
	c.state = applyClear(c.state)
	c.loadedKey = ""
	c.catalog = nil
	c.unlockAndPublish()

	if sessionKey != "" {
		if err := c.chips.Clear(sessionKey); err != nil {
			c.logger.Warn("chip store clear failed", zap.Error(err))
		}
	}
}
