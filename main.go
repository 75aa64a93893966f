package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"campusevents/internal/config"
	"campusevents/internal/engage"
	"campusevents/internal/eventbus"
	"campusevents/internal/fetcher"
	"campusevents/internal/links"
	"campusevents/internal/logging"
	"campusevents/internal/logic"
	"campusevents/internal/search"
	"campusevents/internal/ui"
)

func main() {
	var configPath string
	var debug bool
	flag.StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if configPath == "" {
		configPath = config.DefaultPath()
	}

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The logger is built from config, so config problems are reported on stderr
	configSvc := config.NewConfigService(configPath)
	cfg, created, err := loadOrCreateConfig(configSvc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting", zap.String("config", configPath), zap.Bool("created", created))

	bus := eventbus.New(logger)
	defer bus.Close()
	logLifecycle(bus, logger)

	client := engage.NewClient(nil, cfg.API.BaseURL, cfg.API.ImageBaseURL, cfg.API.Timeout(), logger)
	f := fetcher.New(client, cfg.API.Timeout(), logger)
	f.PageSize = cfg.API.PageSize

	store := logic.NewFeedStore(f, bus, logger)
	defer store.Cancel()

	index := search.NewIndex(cfg.Search.Debounce(), bus, logger)
	defer index.Close()

	model := ui.NewModel(ctx, ui.Deps{
		Feed:   store,
		Index:  index,
		Links:  client,
		Opener: links.NewOpener(logger),
		Bus:    bus,
		Config: cfg,
		Logger: logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)
	detach := ui.Attach(p, store, index, bus, logger)
	defer detach()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("exited normally")
}

// loadOrCreateConfig loads the config file, writing the defaults on first run
func loadOrCreateConfig(svc config.ConfigService) (*config.Config, bool, error) {
	if _, err := os.Stat(svc.Path()); err == nil {
		cfg, err := svc.Load()
		return cfg, false, err
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	cfg, err := svc.Load()
	if err != nil {
		return nil, false, err
	}
	if err := svc.Save(cfg); err != nil {
		// not fatal: run with defaults
		fmt.Fprintf(os.Stderr, "Warning: could not write default config: %v\n", err)
		return cfg, false, nil
	}
	return cfg, true, nil
}

// logLifecycle records fetch and search events in the log
func logLifecycle(bus eventbus.EventBus, logger *zap.Logger) {
	log := logger.Named("lifecycle")
	bus.Subscribe(eventbus.EventFetchStarted, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FetchStartedEvent); ok {
			log.Debug("fetch started", zap.Uint64("epoch", ev.Epoch), zap.String("cycle", ev.Cycle), zap.Bool("reset", ev.Reset))
		}
	})
	bus.Subscribe(eventbus.EventFetchCompleted, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FetchCompletedEvent); ok {
			log.Debug("fetch completed", zap.Uint64("epoch", ev.Epoch), zap.String("cycle", ev.Cycle), zap.Int("count", ev.Count))
		}
	})
	bus.Subscribe(eventbus.EventFetchFailed, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FetchFailedEvent); ok {
			log.Debug("fetch failed", zap.Uint64("epoch", ev.Epoch), zap.String("cycle", ev.Cycle), zap.Error(ev.Err))
		}
	})
	bus.Subscribe(eventbus.EventFetchDiscarded, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FetchDiscardedEvent); ok {
			log.Debug("stale fetch discarded", zap.Uint64("epoch", ev.Epoch), zap.Uint64("current", ev.Current))
		}
	})
	bus.Subscribe(eventbus.EventFilterApplied, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FilterAppliedEvent); ok {
			log.Debug("filter applied", zap.String("query", ev.Query), zap.Int("matches", ev.Matches), zap.Int("total", ev.Total))
		}
	})
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			log.Warn(ev.Message, zap.Error(ev.Err))
		}
	})
}
