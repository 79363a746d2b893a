package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"questline/internal/catalog"
	"questline/internal/chips"
	"questline/internal/config"
	"questline/internal/engine"
	"questline/internal/history"
	"questline/internal/session"
	"questline/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := zap.NewNop()
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()
	}

	missions, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	store, err := history.Open(cfg.HistoryDBPath(), missions, cfg.SessionKey)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	chipStore, err := chips.NewFileStore(cfg.ChipDir())
	if err != nil {
		return fmt.Errorf("opening chip store: %w", err)
	}

	narrator, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, cfg.ModelName, missions)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer narrator.Close()

	wallet := session.NewMemoryWallet(100, 100)
	ctrl := session.NewController(session.Deps{
		Turns:   history.NewRecordingTurnService(narrator, store, logger),
		History: store,
		Status:  store,
		Chips:   chipStore,
		Wallet:  wallet,
		Logger:  logger,
	})

	return tui.Run(ctrl, wallet, cfg.SessionKey)
}
