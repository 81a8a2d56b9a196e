package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
)

func NewFileRepositories(dataDir string, logger internal.Logger) (Store, error) {
	s, err := NewFileStorage(FilePaths{
		Users: filepath.Join(dataDir, "users.json"),
		Goals: filepath.Join(dataDir, "goals.json"),
		Water: filepath.Join(dataDir, "water_logs.json"),
		Sleep: filepath.Join(dataDir, "sleep_entries.json"),
	}, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewPostgresRepositories(ctx context.Context, dsn string, logger internal.Logger) (Store, error) {
	s, err := NewPostgresStorage(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// New opens the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileRepositories(cfg.DataDir, logger)
	case "postgres":
		return NewPostgresRepositories(ctx, cfg.DBDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
