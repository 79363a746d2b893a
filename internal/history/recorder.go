package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questline/internal/models"
)

// turnSender matches the controller's TurnService port without importing it.
type turnSender interface {
	Send(ctx context.Context, text string) (*models.TurnReply, error)
}

// RecordingTurnService wraps a turn service and persists both sides of every
// exchange, so a later session load can replay the transcript. Recording
// failures are logged and do not fail the send.
type RecordingTurnService struct {
	inner  turnSender
	store  *Store
	logger *zap.Logger
}

func NewRecordingTurnService(inner turnSender, store *Store, logger *zap.Logger) *RecordingTurnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingTurnService{inner: inner, store: store, logger: logger}
}

func (r *RecordingTurnService) Send(ctx context.Context, text string) (*models.TurnReply, error) {
	snap := r.snapshot(ctx)
	missionID := missionIDForStage(snap)

	userTurn := models.HistoryTurn{
		ID:        uuid.NewString(),
		IsUser:    true,
		Content:   text,
		MissionID: missionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.RecordTurn(ctx, userTurn); err != nil {
		r.logger.Warn("record user turn failed", zap.Error(err))
	}

	reply, err := r.inner.Send(ctx, text)
	if err != nil {
		return nil, err
	}

	narratorTurn := models.HistoryTurn{
		ID:         uuid.NewString(),
		IsUser:     false,
		Content:    reply.Content,
		MissionID:  missionID,
		CreatedAt:  time.Now().UTC(),
		Completion: reply.MissionCompleted,
	}
	if err := r.store.RecordTurn(ctx, narratorTurn); err != nil {
		r.logger.Warn("record narrator turn failed", zap.Error(err))
	}

	r.persistStatus(ctx, snap, reply)
	return reply, nil
}

func (r *RecordingTurnService) snapshot(ctx context.Context) *models.StatusSnapshot {
	snap, err := r.store.GetStatus(ctx)
	if err != nil {
		r.logger.Warn("status lookup failed", zap.Error(err))
		return &models.StatusSnapshot{CurrentStage: 1}
	}
	return snap
}

func missionIDForStage(snap *models.StatusSnapshot) int64 {
	for _, m := range snap.Catalog {
		if m.OrderIndex == snap.CurrentStage {
			return m.ID
		}
	}
	return 0
}

func (r *RecordingTurnService) persistStatus(ctx context.Context, prev *models.StatusSnapshot, reply *models.TurnReply) {
	stage := prev.CurrentStage
	progress := prev.ProgressPercent
	missionText := prev.MissionText
	if reply.Stage != nil {
		stage = *reply.Stage
		progress = float64(stage-1) / 3 * 100
	}
	if reply.ProgressPercent != nil {
		progress = *reply.ProgressPercent
	}
	if reply.MissionText != nil {
		missionText = *reply.MissionText
	}
	if err := r.store.UpdateStatus(ctx, stage, progress, missionText); err != nil {
		r.logger.Warn("status update failed", zap.Error(err))
	}
}
