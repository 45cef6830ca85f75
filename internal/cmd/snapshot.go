package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/ingest"
	"github.com/storelens/storelens/internal/models"
)

// loadSnapshot reads the snapshot from the configured source.
func loadSnapshot(ctx context.Context, cfg *config.Config) (*models.Snapshot, error) {
	switch cfg.Source.Kind {
	case "csv":
		if cfg.Source.CSVDir == "" {
			return nil, fmt.Errorf("source.csv_dir is required for the csv source")
		}
		return ingest.LoadSnapshotCSV(cfg.Source.CSVDir)
	case "db":
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		return ingest.NewSnapshotLoader(db).Load(ctx)
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source.Kind)
	}
}

// loadFactModel loads the snapshot and builds the validated fact model.
func loadFactModel(ctx context.Context, cfg *config.Config, log *slog.Logger) (*facts.Model, error) {
	snap, err := loadSnapshot(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return facts.Build(snap, log)
}
