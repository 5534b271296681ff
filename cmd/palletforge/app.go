package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/madan-prog/palletforge/config"
	"github.com/madan-prog/palletforge/events"
	"github.com/madan-prog/palletforge/rates"
	"github.com/madan-prog/palletforge/server"
	"github.com/madan-prog/palletforge/store"
)

// App is the backend process: broker, store, rate cache and HTTP API wired
// together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	embeddedServer *natsserver.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream

	store      *store.Store
	rateCache  *rates.Cache
	httpServer *http.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// Start initializes all components and begins serving HTTP.
func (a *App) Start(ctx context.Context) error {
	if err := a.startNATS(ctx); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	st, err := store.NewStore(ctx, a.js)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	a.store = st

	if err := a.seedRates(ctx); err != nil {
		return fmt.Errorf("seed rates: %w", err)
	}

	srv := server.New(a.store, a.rateCache, events.NewPublisher(a.natsConn, a.logger), a.logger)
	a.httpServer = &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	a.logger.Info("Serving HTTP", "addr", a.cfg.Server.Addr)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server stopped", "error", err)
		}
	}()

	return nil
}

func (a *App) startNATS(ctx context.Context) error {
	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL)
		conn, err := nats.Connect(a.cfg.NATS.URL,
			nats.ReconnectWait(2*time.Second),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
	} else {
		a.logger.Info("Starting embedded NATS server")
		opts := &natsserver.Options{
			Port:      -1, // Random available port
			JetStream: true,
			StoreDir:  a.cfg.NATS.StoreDir,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := natsserver.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}

		a.embeddedServer = ns

		conn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			ns.Shutdown()
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
	}

	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	return nil
}

// seedRates builds the in-process rate snapshot. Stored settings win; a
// configured seed file fills in before any admin has saved; defaults cover
// a fresh install.
func (a *App) seedRates(ctx context.Context) error {
	stored, err := a.store.GetSettings(ctx)
	switch {
	case err == nil:
		cache, err := rates.NewCache(*stored)
		if err != nil {
			return fmt.Errorf("stored rate table is invalid: %w", err)
		}
		a.rateCache = cache
		a.logger.Info("Rate table loaded from settings")
		return nil

	case errors.Is(err, store.ErrNotFound):
		seed := rates.Default()
		if a.cfg.Rates.SeedPath != "" {
			seed, err = rates.LoadSeedFile(a.cfg.Rates.SeedPath)
			if err != nil {
				return err
			}
			a.logger.Info("Rate table seeded from file", "path", a.cfg.Rates.SeedPath)
		}
		cache, err := rates.NewCache(seed)
		if err != nil {
			return err
		}
		a.rateCache = cache

		if a.cfg.Rates.Watch && a.cfg.Rates.SeedPath != "" {
			w, err := rates.NewWatcher(rates.WatcherConfig{
				Path:   a.cfg.Rates.SeedPath,
				Logger: a.logger,
			}, cache)
			if err != nil {
				return fmt.Errorf("watch rate file: %w", err)
			}
			go func() {
				if err := w.Start(ctx); err != nil {
					a.logger.Warn("Rate file watcher stopped", "error", err)
				}
			}()
		}
		return nil

	default:
		return err
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Warn("HTTP shutdown incomplete", "error", err)
		}
	}

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.logger.Warn("NATS drain failed", "error", err)
		}
		a.natsConn.Close()
	}

	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}

	a.logger.Info("Shutdown complete")
}

// runServe starts the backend and blocks until ctx is cancelled by
// SIGINT/SIGTERM, then drains.
func runServe(ctx context.Context, configPath, logLevel string) error {
	cfg, err := loadConfig(configPath, logLevel)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	app := NewApp(cfg, logger)

	if err := app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	app.Shutdown(cfg.Server.ShutdownTimeout)
	return nil
}
