package commands

import (
	"context"
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/crawler"
	"github.com/bradykim7/pagecrawl/internal/crawler/sources"
	"github.com/bradykim7/pagecrawl/internal/events"
	"github.com/bradykim7/pagecrawl/internal/jobs"
	"github.com/bradykim7/pagecrawl/internal/notification"
	"github.com/bradykim7/pagecrawl/internal/storage"
	"github.com/bradykim7/pagecrawl/pkg/config"
	"github.com/bradykim7/pagecrawl/pkg/logger"
	"go.uber.org/zap"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    storage.Store
	notifier *notification.DiscordNotifier
}

func newApp(ctx context.Context) (*app, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	log, err := logger.New("pagecrawl", cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	a := &app{cfg: cfg, log: log, store: store}

	if cfg.NotificationsEnabled() {
		a.notifier, err = notification.NewDiscordNotifier(cfg.DiscordToken, cfg.NotifyChannelID, log)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// orchestrator wires fetcher, paginator and observers around the store
func (a *app) orchestrator() *jobs.Orchestrator {
	observer := events.Multi{events.NewLogObserver(a.log)}
	if a.notifier != nil {
		observer = append(observer, a.notifier)
	}

	fetcher := crawler.NewPageFetcher(a.log, observer)
	fetcher.Client.Timeout = a.cfg.HTTPTimeout
	if a.cfg.UserAgent != "" {
		fetcher.Headers["User-Agent"] = a.cfg.UserAgent
	}

	paginator := crawler.NewPaginator(fetcher, sources.Default(), observer, a.log)
	return jobs.NewOrchestrator(a.store, paginator, observer, a.log)
}

// Close cleans up resources
func (a *app) Close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("Error closing storage", zap.Error(err))
	}
	_ = a.log.Sync()
}
