// Primacy - NDIS provider operations engine.
// Copyright (c) 2025 Primacy In Homecare Australia
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/api"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/bus"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/cache"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/compliance"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/incident"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/integration"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/payrate"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/pricing"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/recruitment"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/repository"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/scheduler"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/shift"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/telemetry"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/worker"
	"github.com/joho/godotenv"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := domain.DefaultConfig()
	if os.Getenv("PRIMACY_PROFILE") == string(domain.ProfileProduction) {
		cfg = domain.ProductionConfig()
	}
	cfg.ApplyEnv(os.Getenv)

	slog.SetDefault(newLogger(cfg.Logging))

	slog.Info("starting primacy",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"profile", cfg.Profile,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"timezone", cfg.Rules.Timezone,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	shutdownTracing := telemetry.Setup(ctx, cfg.Tracing)

	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	publisher := integration.NewPublisher(busImpl, repo)

	calc, err := payrate.NewCalculator(cfg.Rules)
	if err != nil {
		slog.Error("failed to compile pay multiplier rules", "error", err)
		os.Exit(1)
	}
	screener, err := recruitment.NewScreener(cfg.Rules.ScreeningRules)
	if err != nil {
		slog.Error("failed to compile screening rules", "error", err)
		os.Exit(1)
	}

	slog.Info("rule tables compiled",
		"pay_rules", calc.RuleIDs(),
		"screening_rules", screener.RuleIDs(),
	)

	prices := pricing.NewService(repo, cacheImpl, cfg.Rules)
	incidents := incident.NewService(repo, incident.NewClassifier(calc.Location()), publisher, cacheImpl, incident.Contacts{
		Phone: cfg.Integration.AlertPhone,
		Email: cfg.Integration.AlertEmail,
	})

	dispatcher := integration.NewDispatcher(repo, newProviders(ctx, cfg.Integration))

	syncWorker := worker.NewWorker(busImpl, dispatcher)
	if err := syncWorker.Start(); err != nil {
		slog.Error("failed to start integration worker", "error", err)
		os.Exit(1)
	}
	slog.Info("integration worker started")

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(cfg.Scheduler, dispatcher, incidents)
		if err := jobs.Start(ctx); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(cfg.Server, api.Services{
		Repo:        repo,
		Cache:       cacheImpl,
		Bus:         busImpl,
		Requester:   publisher,
		Pricing:     prices,
		PayRate:     calc,
		Shifts:      shift.NewService(repo, calc, prices, publisher),
		Compliance:  compliance.NewAggregator(repo, prices, cfg.Rules.CriticalityWeights),
		Incidents:   incidents,
		Recruitment: recruitment.NewService(repo, screener, publisher),
		Sync:        dispatcher,
		Worker:      syncWorker,

		MaxSyncAttempts: cfg.Scheduler.MaxSyncAttempts,
		Version:         Version,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("primacy is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if jobs != nil {
		jobs.Stop()
	}
	if err := syncWorker.Stop(); err != nil {
		slog.Error("failed to stop integration worker", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("failed to flush traces", "error", err)
	}

	slog.Info("primacy shutdown complete")
}

func newLogger(cfg domain.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newProviders builds the external clients. Unconfigured providers stay nil
// and their syncs are recorded as failed.
func newProviders(ctx context.Context, cfg domain.IntegrationConfig) integration.Providers {
	providers := integration.Providers{
		SMS:   integration.NewNotifier(cfg.SMSProvider, "sms"),
		Email: integration.NewNotifier(cfg.EmailProvider, "email"),
	}

	if cfg.ClientID != "" {
		client, err := integration.NewAccountingClient(ctx, cfg)
		if err != nil {
			slog.Warn("accounting integration disabled", "error", err)
		} else {
			providers.Accounting = client
			slog.Info("accounting integration enabled", "url", cfg.AccountingURL)
		}
	}

	if cfg.ESignURL != "" {
		client, err := integration.NewESignClient(cfg)
		if err != nil {
			slog.Warn("e-signature integration disabled", "error", err)
		} else {
			providers.ESign = client
			slog.Info("e-signature integration enabled", "url", cfg.ESignURL)
		}
	}

	return providers
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  PRIMACY - NDIS provider operations")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Profile:  %s\n", cfg.Profile)
	fmt.Printf("  Timezone: %s\n", cfg.Rules.Timezone)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    GET  /prices/{code}                    - Price limit lookup")
	fmt.Println("    POST /pay-rates/calculate              - Penalty-rate pay calculation")
	fmt.Println("    POST /shifts                           - Schedule a shift")
	fmt.Println("    POST /shifts/{id}/check-out            - Complete a shift and invoice it")
	fmt.Println("    POST /compliance/{entityType}/{id}     - Run compliance checks")
	fmt.Println("    POST /incidents                        - Report an incident")
	fmt.Println("    GET  /incidents/overdue                - Incidents past their deadline")
	fmt.Println("    POST /applications                     - Apply and auto-screen")
	fmt.Println("    PUT  /applications/{id}/status         - Move an application")
	fmt.Println("    GET  /integrations/sync                - Integration sync records")
	fmt.Println("    GET  /health                           - Health check")
	fmt.Println()
}
