// Package main provides the entry point for the picks refresh daemon.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/app"
	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/health"
	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/metrics"
	"github.com/yourusername/smart-picks/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	warmup := flag.Bool("warmup", true, "Run every market once at startup")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(context.Background(), cfg); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		log.Fatalf("Invalid configuration for environment: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Smart Picks server starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize application")
	}
	defer a.Close()

	sched := scheduler.NewScheduler(a.Service, cfg.CycleTimeout(), appLog)
	for _, mc := range cfg.EnabledMarkets() {
		if err := sched.ScheduleRefresh(mc.Market(), mc.Schedule); err != nil {
			appLog.WithError(err).WithField("market", mc.Name).Fatal("Failed to schedule market refresh")
		}
	}

	var pinger health.DatabasePinger
	if a.DB != nil {
		pinger = a.DB
	}
	server := health.NewServer(health.Config{
		ServiceName:      cfg.App.Name,
		Version:          Version,
		Commit:           GitCommit,
		Port:             cfg.Server.Port,
		Logger:           appLog,
		DB:               pinger,
		Picks:            a.Service,
		MetricsPath:      cfg.Server.MetricsPath,
		MetricsHandler:   metrics.Handler(),
		WebSocketPath:    cfg.Server.WebSocketPath,
		WebSocketHandler: a.Hub,
	})
	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start HTTP server")
	}

	if *warmup {
		if _, err := a.Service.RunAll(ctx); err != nil {
			appLog.WithError(err).Warn("Startup refresh completed with errors")
		}
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	server.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"markets":  len(cfg.EnabledMarkets()),
		"sources":  a.Sources.Available(),
		"next_run": sched.GetNextRun(),
		"port":     cfg.Server.Port,
	}).Info("Smart Picks server running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	server.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	cancel()
	if err := server.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error shutting down HTTP server")
	}

	appLog.Info("Smart Picks server shut down successfully")
}
