package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"propscout-engine/internal/aggregate"
	"propscout-engine/internal/config"
	"propscout-engine/internal/httpapi"
	"propscout-engine/internal/sources"
	"propscout-engine/internal/sources/grid"
	"propscout-engine/internal/sources/mailalert"
	"propscout-engine/internal/sources/parcels"
	"propscout-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("engine exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; API keys can also live in the OS keychain.
	_ = godotenv.Load()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	dataDir := os.Getenv("PROPSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// One engine per data dir; the sqlite cache has a single writer.
	lock := flock.New(filepath.Join(dataDir, "propscout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire data dir lock: %w", err)
	}
	if !locked {
		return errors.New("another engine instance already holds the data dir lock")
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	cfg, check := config.NormalizeAndValidate(cfg)
	for _, warning := range check.Warnings {
		log.Warn("config", "warning", warning)
	}
	if !check.OK() {
		return fmt.Errorf("config invalid: %s", strings.Join(check.Errors, "; "))
	}

	db, err := store.Open(filepath.Join(dataDir, "propscout.db"))
	if err != nil {
		return fmt.Errorf("open property cache: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate property cache: %w", err)
	}

	factory := sources.NewFactory(cfg.AdapterTimeout(), cfg.Aggregation.ScrapeCap, log)
	orch := aggregate.New(aggregate.Options{
		PolitenessDelay:     cfg.PolitenessDelay(),
		MaxSources:          cfg.Aggregation.MaxSources,
		MaxAfterSpecialized: cfg.Aggregation.MaxAfterSpecialized,
		AdapterTimeout:      cfg.AdapterTimeout(),
		Priority:            cfg.Aggregation.Priority,
	}, factory.Build, log).
		WithGrid(grid.New(cfg.Aggregation.GridAPIURL, cfg.AdapterTimeout(), log)).
		WithSink(store.Properties{DB: db})

	if cfg.Email.Enabled {
		orch.WithExtra(mailalert.New(mailalert.Config{
			IMAPHost:       cfg.Email.IMAPHost,
			IMAPPort:       cfg.Email.IMAPPort,
			Username:       cfg.Email.Username,
			KeyringAccount: cfg.Email.KeyringAccount,
			Senders:        cfg.Email.Senders,
			MaxMessages:    cfg.Email.MaxMessages,
		}, log))
	}
	if cfg.Parcels.Enabled {
		orch.WithExtra(parcels.New(parcels.Config{
			Shapefile: cfg.Parcels.Shapefile,
			County:    cfg.Parcels.County,
			Fields:    cfg.Parcels.Fields,
		}, log))
	}

	router := httpapi.NewRouter(httpapi.Deps{Run: orch.Run, DB: db, Log: log})
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("engine listening", "addr", srv.Addr, "data_dir", dataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Refresh.Enabled && len(cfg.Refresh.Locations) > 0 {
		g.Go(func() error {
			refreshLoop(gctx, orch, cfg, log)
			return nil
		})
	}

	return g.Wait()
}

// refreshLoop keeps the local cache warm for a configured set of locations.
func refreshLoop(ctx context.Context, orch *aggregate.Orchestrator, cfg config.Config, log *slog.Logger) {
	interval := time.Duration(cfg.Refresh.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, loc := range cfg.Refresh.Locations {
				if ctx.Err() != nil {
					return
				}
				rep := orch.Run(ctx, aggregate.Request{Location: loc})
				log.Info("warm refresh", "location", loc, "found", rep.TotalFound, "sources", rep.SourcesAttempted)
			}
		}
	}
}
