package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/config"
	"github.com/tatianab/arena-of-gods/internal/logging"
	"github.com/tatianab/arena-of-gods/internal/models"
	"github.com/tatianab/arena-of-gods/internal/narration"
	"github.com/tatianab/arena-of-gods/internal/setup"
	"github.com/tatianab/arena-of-gods/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	provider, closeProvider := narration.NewProvider(ctx, cfg, nil, logger)
	defer closeProvider()

	opts := tui.Options{
		Provider: provider,
		Budget:   setup.Unlimited,
		SaveDir:  cfg.SaveDir,
		Delay:    cfg.ExchangeDelay,
		Logger:   logger,
	}
	if cfg.Budget > 0 {
		opts.Budget = cfg.Budget
	}
	if cfg.TeamsFile != "" {
		teams, err := models.LoadTeams(cfg.TeamsFile)
		if err != nil {
			fmt.Printf("Error loading teams: %v\n", err)
			os.Exit(1)
		}
		logger.Info("teams loaded", zap.String("file", cfg.TeamsFile))
		opts.Teams = &teams
	}

	if err := tui.Run(ctx, opts); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
