package cmd

import (
	"context"
	"fmt"
	"time"

	"heritage/core/backup"
	"heritage/core/config"
	"heritage/core/database"
	"heritage/core/logger"
	"heritage/core/reconcile"
	"heritage/core/replication"
	"heritage/core/storage"
	"heritage/core/versionstore"
	"heritage/feature/family"
	replicationFeature "heritage/feature/replication"

	"go.uber.org/zap"
)

// app bundles the wired components shared by every command.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	store        *family.Store
	orchestrator *replication.Orchestrator
	backups      *backup.Manager
	service      *replicationFeature.Service
}

// bootstrap loads configuration and wires the record store, the mirror and
// the replication service. The mirror is optional: without it sync reports
// itself unavailable and backups are kept in memory.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	l.Info("Connected to record database", zap.String("driver", db.Dialector.Name()))

	var mirror versionstore.Store
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		l.Warn("Storage client unavailable, replication disabled", zap.Error(err))
	} else {
		timeout := time.Duration(cfg.Storage.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := storage.EnsureBucket(checkCtx, client, cfg.Storage.Bucket, cfg.Storage.Region)
		cancel()
		if err != nil {
			l.Warn("Mirror bucket not reachable yet, pushes will be retried", zap.Error(err))
		}
		mirror = versionstore.NewObjectStore(client, cfg.Storage.Bucket)
	}

	orch := replication.New(cfg.Sync, mirror, l)

	var backups *backup.Manager
	if mirror != nil {
		backups = backup.NewManager(mirror, cfg.Backup, l)
	} else {
		l.Warn("Backups are kept in memory only")
		backups = backup.NewManager(versionstore.NewMemory(), cfg.Backup, l,
			backup.WithDestination(backup.DestinationFallback))
	}

	store := family.NewStore(db, orch, l)
	if err := store.Prepare(ctx); err != nil {
		return nil, err
	}

	cache := reconcile.NewIntervalCache(store.Intervals, time.Minute)
	runner := reconcile.NewRunner(store, backups, l, reconcile.WithIntervalCache(cache))

	return &app{
		cfg:          cfg,
		logger:       l,
		store:        store,
		orchestrator: orch,
		backups:      backups,
		service:      replicationFeature.NewService(orch, backups, runner, store, l),
	}, nil
}
