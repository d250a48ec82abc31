package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remitline/remitline-backend/internal/adapter/api"
	"github.com/remitline/remitline-backend/internal/adapter/notifier"
	"github.com/remitline/remitline-backend/internal/adapter/rateapi"
	"github.com/remitline/remitline-backend/internal/adapter/ratecache"
	"github.com/remitline/remitline-backend/internal/adapter/repository/postgres"
	"github.com/remitline/remitline-backend/internal/config"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/remitline/remitline-backend/internal/usecase/conversion"
	"github.com/remitline/remitline-backend/internal/usecase/feeadmin"
	"github.com/remitline/remitline-backend/internal/usecase/feeschedule"
	"github.com/remitline/remitline-backend/internal/usecase/rates"
	"github.com/remitline/remitline-backend/internal/usecase/release"
	"github.com/remitline/remitline-backend/internal/usecase/seeder"
	"github.com/remitline/remitline-backend/internal/usecase/settlement"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if err := postgres.RunMigrations("file://migrations", cfg.DB.DatabaseURL()); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, err := postgres.NewDB(ctx, cfg.DB.DatabaseURL())
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	currencyStore := postgres.NewCurrencyRepository(db)
	branchStore := postgres.NewBranchRepository(db)
	fundStore := postgres.NewFundRepository(db)
	commissionStore := postgres.NewCommissionRateRepository(db)
	legacyFeeStore := postgres.NewBranchFeeRateRepository(db)
	transferStore := postgres.NewTransferRepository(db)
	auditSink := postgres.NewAuditRepository(db)

	// Side channels
	var transferNotifier domain.Notifier
	if cfg.Kafka.Enabled {
		kafkaNotifier, err := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Error("failed to create kafka notifier", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer kafkaNotifier.Close()
		transferNotifier = kafkaNotifier
	} else {
		transferNotifier = notifier.NewLogNotifier(logger)
	}

	// Rate source, optionally cached
	var rateSource domain.RateSource = rateapi.NewClient(cfg.Rates.ProviderURL, cfg.Rates.APIKey)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer rdb.Close()
		rateSource = ratecache.New(rateSource, rdb, logger)
	}

	// Services
	converter := conversion.NewConversionService(currencyStore)
	fees := feeschedule.NewFeeScheduleService(commissionStore, legacyFeeStore)
	settlementService := settlement.NewSettlementService(
		fundStore, branchStore, transferStore, converter, fees, transferNotifier, auditSink, logger)
	releaseService := release.NewReleaseService(transferStore, transferNotifier, auditSink, logger)
	feeAdminService := feeadmin.NewFeeAdminService(commissionStore, branchStore, auditSink, logger)
	rateService := rates.NewRateService(rateSource, currencyStore, logger)
	rateService.FetchTimeout = cfg.Rates.FetchTimeout

	// Seed baseline data
	systemSeeder := seeder.NewSystemSeeder(
		currencyStore, branchStore, fundStore, commissionStore, legacyFeeStore, logger)
	if err := systemSeeder.Seed(ctx); err != nil {
		logger.Error("failed to seed system data", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// HTTP server
	handler := api.NewRouter(settlementService, releaseService, feeAdminService, rateService,
		fundStore, []byte(cfg.JWT.Secret), logger)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
