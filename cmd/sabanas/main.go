package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phantoooomCam/sabanas-server/internal/config"
	"github.com/phantoooomCam/sabanas-server/internal/db"
	"github.com/phantoooomCam/sabanas-server/internal/ftpclient"
	"github.com/phantoooomCam/sabanas-server/internal/health"
	"github.com/phantoooomCam/sabanas-server/internal/httpapi"
	"github.com/phantoooomCam/sabanas-server/internal/job"
	"github.com/phantoooomCam/sabanas-server/internal/metrics"
	"github.com/phantoooomCam/sabanas-server/internal/reaper"
	"github.com/phantoooomCam/sabanas-server/internal/repository"
	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

var (
	configFile string
	initDBFlag bool
	flushDB    bool
	verbose    bool

	// Shared with commands.go, built by initializeForCLI.
	cfg     *config.Config
	repo    *repository.Repository
	ftp     *ftpclient.Client
	engine  *job.Engine
	healthS *health.HealthService
	metricS *metrics.PrometheusMetrics
)

func main() {
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.BoolVar(&initDBFlag, "init-db", false, "Initialize database schema (WARNING: drops existing data with --flush)")
	flag.BoolVar(&flushDB, "flush", false, "Flush existing database before initialization")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if flag.NFlag() > 0 {
		runServerMode()
		return
	}

	runCLI()
}

func runServerMode() {
	ctx := context.Background()

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		cfg.Monitoring.Logging.Level = "debug"
	}
	if err := initLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := initializeDatabase(); err != nil {
		logger.Fatal("failed to connect to database", err)
	}

	if initDBFlag {
		runInitDB(ctx)
		return
	}

	runServe(ctx)
}

func runServe(ctx context.Context) {
	buildServices()

	engine.Start(ctx)
	go reaper.New(repo, cfg.Job).Run(ctx)

	srv := httpapi.New(cfg.HTTP, engine, healthS, metricS)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			logger.WithError(err).Warn("http server stopped")
		}
	}()

	logger.Info("sabanas-server started")
	<-sigChan
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("error stopping http server")
	}

	engine.Stop()
	healthS.Stop()
	logger.Info("shutdown complete")
}

func runInitDB(ctx context.Context) {
	logger.Info("initializing database schema")

	if flushDB {
		logger.Warn("flush mode enabled - all existing data will be deleted")
		fmt.Print("\nWARNING: this will DELETE ALL existing data. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			logger.Info("database initialization cancelled")
			return
		}
	}

	if err := db.InitializeDatabase(ctx, db.GetDB().DB, flushDB); err != nil {
		logger.Fatal("failed to initialize database schema", err)
	}

	logger.Info("database initialization completed successfully")
}

func loadConfig() error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func initLogger() error {
	return logger.Init(logger.Config{
		Level:  cfg.Monitoring.Logging.Level,
		Format: cfg.Monitoring.Logging.Format,
		Output: cfg.Monitoring.Logging.Output,
		File: logger.FileConfig{
			Enabled:    cfg.Monitoring.Logging.File.Enabled,
			Path:       cfg.Monitoring.Logging.File.Path,
			MaxSize:    cfg.Monitoring.Logging.File.MaxSize,
			MaxBackups: cfg.Monitoring.Logging.File.MaxBackups,
			MaxAge:     cfg.Monitoring.Logging.File.MaxAge,
			Compress:   cfg.Monitoring.Logging.File.Compress,
		},
	})
}

func initializeDatabase() error {
	return db.Initialize(db.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
		Charset:         cfg.Database.Charset,
	})
}

func buildServices() {
	if repo != nil {
		return
	}
	repo = repository.New(db.GetDB())
	ftp = ftpclient.New(cfg.FTP)
	metricS = metrics.NewPrometheusMetrics()
	engine = job.NewEngine(repo, ftp, cfg.Job, cfg.FTP, metricS)

	healthS = health.NewHealthService(cfg.Monitoring.Metrics.Port)
	healthS.RegisterLivenessCheck("server", health.CheckFunc(func(ctx context.Context) error {
		return nil
	}))
	healthS.RegisterReadinessCheck("database", health.CheckFunc(func(ctx context.Context) error {
		if !db.GetDB().IsHealthy() {
			return fmt.Errorf("database unhealthy")
		}
		return nil
	}))
	healthS.RegisterReadinessCheck("ftp", health.CheckFunc(func(ctx context.Context) error {
		return ftp.Ping()
	}))
}

// initializeForCLI is the one-shot equivalent of buildServices for
// subcommands that need the database and config but not the worker pool
// or HTTP surface (migrate, process, stats).
func initializeForCLI(ctx context.Context) error {
	if cfg != nil {
		return nil
	}
	if err := loadConfig(); err != nil {
		return err
	}
	if err := initLogger(); err != nil {
		return err
	}
	if err := initializeDatabase(); err != nil {
		return err
	}
	buildServices()
	return nil
}
