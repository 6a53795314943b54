package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/despertad/wakefolder/internal/config"
	httpapi "github.com/despertad/wakefolder/internal/delivery/http"
	"github.com/despertad/wakefolder/internal/fire"
	"github.com/despertad/wakefolder/internal/playback"
	"github.com/despertad/wakefolder/internal/scheduler"
	"github.com/despertad/wakefolder/internal/storage"
	pgstore "github.com/despertad/wakefolder/internal/storage/postgres"
	"github.com/despertad/wakefolder/internal/storage/prefs"
	redisstore "github.com/despertad/wakefolder/internal/storage/redis"
	"github.com/despertad/wakefolder/internal/usecase"
	"github.com/despertad/wakefolder/pkg/httpserver"
	"github.com/despertad/wakefolder/pkg/logger"
	"github.com/despertad/wakefolder/pkg/postgres"
)

func Run(cfg *config.Config) {
	l := logger.New(cfg.Log.Level, cfg.App.Env)

	l.Info("starting "+cfg.App.Name,
		slog.String("version", cfg.App.Version),
		slog.String("storage", cfg.Storage.Backend),
	)

	// os.Exit skips defers, so everything needing cleanup lives in run.
	if err := run(cfg, l); err != nil {
		l.Error("app - Run", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *logger.Logger) error {
	ctx := context.Background()

	// Preference store
	store, err := newStore(ctx, l, cfg)
	if err != nil {
		return fmt.Errorf("app - run - newStore: %w", err)
	}
	defer store.Close()

	// Playback and scheduling
	pc := playback.New(l, cfg.Playback.Player, cfg.Playback.MaxFiles, cfg.Playback.MaxDepth)
	gw := scheduler.New(l)
	fh := fire.New(store, gw, pc, l)
	gw.OnFire(func(ev scheduler.Event) {
		fh.Handle(context.Background(), ev)
	})

	uc := usecase.New(store, gw, l)

	// Re-arm persisted alarms, the daemon restart counterpart of a device
	// reboot.
	n, err := uc.RearmAll(ctx)
	if err != nil {
		return fmt.Errorf("app - run - uc.RearmAll: %w", err)
	}
	l.Info("alarms re-armed", slog.Int("count", n))

	// HTTP server
	router := httpapi.NewRouter(l, uc, pc, cfg)
	httpServer := httpserver.New(
		router,
		httpserver.Addr(cfg.HTTP.IP, cfg.HTTP.Port),
		httpserver.ReadTimeout(cfg.HTTP.Timeout),
		httpserver.WriteTimeout(cfg.HTTP.Timeout),
		httpserver.IdleTimeout(cfg.HTTP.IdleTimout),
	)
	l.Info("http server started", slog.String("addr", cfg.HTTP.IP+":"+cfg.HTTP.Port))

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - run - signal: " + s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Sprintf("app - run - httpServer.Notify: %v", err))
	}

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error("app - run - httpServer.Shutdown", logger.Err(err))
	}
	gw.Stop()
	pc.Stop()

	return nil
}

func newStore(ctx context.Context, l *logger.Logger, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "prefs", "":
		return prefs.New(cfg.Storage.Dir)
	case "redis":
		return redisstore.New(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
	case "postgres":
		pg, err := postgres.New(ctx, l, cfg.Storage.PG.URL, postgres.MaxPoolSize(cfg.Storage.PG.PoolMax))
		if err != nil {
			return nil, fmt.Errorf("app - newStore - postgres.New: %w", err)
		}
		return pgstore.New(ctx, pg)
	default:
		return nil, fmt.Errorf("app - newStore - unknown backend %q", cfg.Storage.Backend)
	}
}
