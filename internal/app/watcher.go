package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/upgates-go/internal/config"
	"github.com/samvad-hq/upgates-go/internal/logger"
	"github.com/samvad-hq/upgates-go/internal/storage"
	"github.com/samvad-hq/upgates-go/internal/watcher"
	"github.com/samvad-hq/upgates-go/pkg/publishers"
	"github.com/samvad-hq/upgates-go/pkg/upgates"
)

// Watcher represents the order watcher runtime. It owns the Upgates client,
// the publisher fanout and the revision store, and drives watch passes on a
// fixed interval.
type Watcher struct {
	cfg          *config.Config
	client       *upgates.Client
	fanout       *publishers.Fanout
	service      *watcher.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := upgates.New(upgates.Config{
		APIURL: cfg.UpgatesAPIURL,
		Login:  cfg.UpgatesLogin,
		APIKey: cfg.UpgatesAPIKey,
		Debug:  cfg.UpgatesDebug,
	}, upgates.WithLogger(log), upgates.WithTimeout(cfg.UpgatesTimeout))
	if err != nil {
		return nil, fmt.Errorf("init upgates client: %w", err)
	}
	log.InfoObj("upgates client initialized", "upgates_meta", map[string]any{
		"api_url":         client.BaseURL(),
		"debug":           cfg.UpgatesDebug,
		"timeout_seconds": int(cfg.UpgatesTimeout.Seconds()),
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		RevisionTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"revision_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	service := watcher.NewService(client.Orders, fanout, store, log, watcher.Options{
		Lookback: cfg.WatchLookback,
		MaxPages: cfg.WatchMaxPages,
		StatusID: cfg.WatchStatusID,
	})

	return &Watcher{
		cfg:          cfg,
		client:       client,
		fanout:       fanout,
		service:      service,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run performs a pass immediately and then on every tick until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
		"status_id":        w.cfg.WatchStatusID,
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial watch pass failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled watch pass failed", "error", err)
			}
		}
	}
}

// runOnce performs a single watch pass.
func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	w.log.InfoObj("watch pass started", "watch_meta", map[string]any{
		"started_at": start.UTC(),
	})
	res, err := w.service.Run(ctx)
	if err != nil {
		return err
	}
	w.log.InfoObj("watch pass completed", "watch_meta", map[string]any{
		"orders":     res.Orders,
		"published":  res.Published,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases publishers and the storage backend, logging any errors encountered.
func (w *Watcher) close() {
	if w == nil {
		return
	}
	var errs []error
	if w.fanout != nil {
		errs = append(errs, w.fanout.Close())
	}
	if w.store != nil {
		errs = append(errs, w.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		w.log.ErrorObj("watcher shutdown failed", "error", err)
	}
}
