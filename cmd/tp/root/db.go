package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkhrrs89/TaskPoints/internal/config"
	"github.com/mkhrrs89/TaskPoints/internal/storage"
)

func openService(ctx context.Context) (*storage.Service, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	var store interface {
		storage.KVStore
		storage.BlobStore
	}
	switch cfg.Backend {
	case config.BackendBolt:
		path := cfg.DBPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("resolve home dir: %w", err)
			}
			path = filepath.Join(home, ".taskpoints.bolt")
		}
		store, err = storage.OpenBolt(path)
	default:
		path := cfg.DBPath
		if path == "" {
			path, err = storage.DefaultDBPath()
			if err != nil {
				return nil, nil, nil, err
			}
		}
		store, err = storage.OpenSQLite(ctx, path)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	svc := storage.NewService(store, store, logger, cfg.Debounce)
	cleanup := func() {
		_ = svc.Close()
		_ = store.Close()
	}
	return svc, cfg, cleanup, nil
}

func saveOptions(cfg *config.Config) storage.SaveOptions {
	return storage.SaveOptions{
		Immediate: true,
		Limits: &storage.TrimLimits{
			Completions: cfg.Trim.Completions,
			GameHistory: cfg.Trim.GameHistory,
			Matchups:    cfg.Trim.Matchups,
			WorkHistory: cfg.Trim.WorkHistory,
		},
	}
}
