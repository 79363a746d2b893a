// Package history persists chat turns and session status in a local sqlite
// database, serving history/status reads for session resume.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"questline/internal/models"
)

type turnRow struct {
	ID         string `gorm:"primaryKey"`
	SessionKey string `gorm:"index"`
	IsUser     bool
	Content    string
	MissionID  int64
	Completion bool
	CreatedAt  time.Time
}

type sessionRow struct {
	SessionKey      string `gorm:"primaryKey"`
	Stage           int
	ProgressPercent float64
	MissionText     string
	Avatar          string
	Background      string
	UpdatedAt       time.Time
}

// Store is bound to one session key. It implements the controller's
// HistoryService and StatusService ports.
type Store struct {
	db         *gorm.DB
	catalog    []models.Mission
	sessionKey string
}

func Open(path string, catalog []models.Mission, sessionKey string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&turnRow{}, &sessionRow{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db, catalog: catalog, sessionKey: sessionKey}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// RecordTurn appends one confirmed turn to the durable log.
func (s *Store) RecordTurn(ctx context.Context, t models.HistoryTurn) error {
	row := turnRow{
		ID:         t.ID,
		SessionKey: s.sessionKey,
		IsUser:     t.IsUser,
		Content:    t.Content,
		MissionID:  t.MissionID,
		Completion: t.Completion,
		CreatedAt:  t.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// UpdateStatus upserts the session's stage, progress and mission text.
func (s *Store) UpdateStatus(ctx context.Context, stage int, progress float64, missionText string) error {
	row := sessionRow{
		SessionKey:      s.sessionKey,
		Stage:           stage,
		ProgressPercent: progress,
		MissionText:     missionText,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (s *Store) GetHistory(ctx context.Context) (*models.HistoryPage, error) {
	var rows []turnRow
	err := s.db.WithContext(ctx).
		Where("session_key = ?", s.sessionKey).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	page := &models.HistoryPage{Turns: make([]models.HistoryTurn, 0, len(rows))}
	for _, row := range rows {
		page.Turns = append(page.Turns, models.HistoryTurn{
			ID:         row.ID,
			IsUser:     row.IsUser,
			Content:    row.Content,
			MissionID:  row.MissionID,
			CreatedAt:  row.CreatedAt,
			Completion: row.Completion,
		})
	}

	var sess sessionRow
	err = s.db.WithContext(ctx).
		Where("session_key = ?", s.sessionKey).
		Take(&sess).Error
	if err == nil {
		page.NarratorAvatar = sess.Avatar
		page.NarratorBackground = sess.Background
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get session row: %w", err)
	}
	return page, nil
}

// GetStatus returns the stored status, defaulting to stage 1 with zero
// progress for a session that has not been written yet.
func (s *Store) GetStatus(ctx context.Context) (*models.StatusSnapshot, error) {
	snap := &models.StatusSnapshot{
		CurrentStage: 1,
		Catalog:      append([]models.Mission(nil), s.catalog...),
	}
	var sess sessionRow
	err := s.db.WithContext(ctx).
		Where("session_key = ?", s.sessionKey).
		Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	snap.CurrentStage = sess.Stage
	snap.ProgressPercent = sess.ProgressPercent
	snap.MissionText = sess.MissionText
	return snap, nil
}
