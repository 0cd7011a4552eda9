package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auction "philabid/internal/auctionService"
	"philabid/internal/backup"
	bidding "philabid/internal/biddingService"
	"philabid/internal/config"
	"philabid/internal/migrate"
	"philabid/internal/observability"
	"philabid/internal/repository"
	"philabid/internal/server"
	"philabid/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults to $"+config.EnvConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("unknown log level, keeping info", map[string]any{"level": cfg.LogLevel})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: server.ServiceName,
		Enabled:     cfg.Tracing,
	})
	if err != nil {
		utils.Warn("tracing disabled", map[string]any{"error": err.Error()})
	}
	defer flushTracing(shutdownTracing)

	db, err := repository.Open(cfg.DBPath, repository.Options{BusyTimeout: cfg.BusyTimeout})
	if err != nil {
		utils.Fatal("failed to open database", map[string]any{"error": err.Error()})
	}
	defer repository.Close(db)

	migrations, err := migrate.Embedded()
	if err != nil {
		utils.Fatal("failed to load migrations", map[string]any{"error": err.Error()})
	}
	migrator := migrate.New(db, migrations)
	applied, err := migrator.Run(ctx)
	if err != nil {
		utils.Fatal("schema migration failed", map[string]any{"error": err.Error()})
	}
	utils.Info("schema ready", map[string]any{"applied": applied})

	repo := repository.NewSQLRepo(db, migrator, cfg.StorageTimeout)
	ledger := bidding.NewBidLedger(repo, bidding.WithConflictRetries(cfg.BidRetries))
	service := auction.NewAuctionService(repo, ledger)

	var backuper *backup.Backuper
	if cfg.Backup.Enabled {
		backuper = backup.New(db, cfg.Backup.Dir, cfg.Backup.Keep)
		if _, err := backuper.Snapshot(ctx); err != nil {
			utils.Error("startup backup failed", map[string]any{"error": err.Error()})
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.SetupRouter(service, migrator),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Info("starting auction server", map[string]any{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return service.RunSweeper(gctx, cfg.SweepInterval)
	})
	if backuper != nil {
		g.Go(func() error {
			return backuper.Run(gctx, cfg.Backup.Interval)
		})
	}

	if err := g.Wait(); err != nil {
		utils.Error("server stopped with error", map[string]any{"error": err.Error()})
		return
	}
	utils.Info("server stopped", nil)
}

func flushTracing(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		utils.Warn("tracing shutdown failed", map[string]any{"error": err.Error()})
	}
}
