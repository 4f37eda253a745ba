package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/BrandonDHaskell/permwatch/internal/config"
	"github.com/BrandonDHaskell/permwatch/internal/db"
	"github.com/BrandonDHaskell/permwatch/internal/httpapi"
	"github.com/BrandonDHaskell/permwatch/internal/metrics"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/service"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store/memory"
	sqlitestore "github.com/BrandonDHaskell/permwatch/internal/permwatch/store/sqlite"
	"github.com/BrandonDHaskell/permwatch/internal/rpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "permwatch-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()

	flagSet := pflag.NewFlagSet("permwatch-server", pflag.ContinueOnError)
	cfg.AddFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := log.New(os.Stdout, "permwatch-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Stores
	var (
		logStore      store.UsageLogStore
		settingsStore store.SettingsStore
	)
	switch cfg.Store {
	case "memory":
		logStore = memory.NewUsageLogStore(cfg.MaxEntries)
		settingsStore = memory.NewSettingsStore()
	default:
		conn, writer, err := openSQLite(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		defer writer.Close()
		logStore = sqlitestore.NewUsageLogStore(conn, writer, cfg.MaxEntries)
		settingsStore = sqlitestore.NewSettingsStore(conn, writer)
	}

	// Services
	logSvc := service.NewLogService(service.Options{
		Logs:          logStore,
		Settings:      settingsStore,
		Alerter:       service.NewLogAlerter(logger),
		Logger:        logger,
		Metrics:       m,
		AlertCooldown: cfg.AlertCooldown,
	})
	pruner := service.NewLogPruner(logStore, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
		Logger:        logger,
		Metrics:       m,
	})

	// HTTP
	httpSrv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Addr:       cfg.HTTPAddr,
		LogService: logSvc,
		Gatherer:   reg,
	})

	// gRPC
	var rpcSrv *rpc.Server
	if cfg.GRPCAddr != "" {
		rpcSrv = rpc.NewServer(rpc.Dependencies{
			Logger:     logger,
			Addr:       cfg.GRPCAddr,
			LogService: logSvc,
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if rpcSrv != nil {
		g.Go(func() error {
			logger.Printf("grpc listening on %s", cfg.GRPCAddr)
			if err := rpcSrv.Start(); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error { return pruner.Run(gctx) })

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		if rpcSrv != nil {
			_ = rpcSrv.Shutdown(shutdownCtx)
		}
		return nil
	})

	err := g.Wait()
	logger.Printf("stopped")
	return err
}

func openSQLite(ctx context.Context, cfg config.Config, logger *log.Logger) (*sql.DB, *db.Worker, error) {
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{
			NotificationsEnabled: cfg.NotificationsDefault,
		}); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}

	logger.Printf("sqlite store at %s (max_entries=%d)", cfg.DBPath, cfg.MaxEntries)
	return conn, db.NewWorker(conn), nil
}
