package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/admin"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/alert"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/config"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/exchange"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway/oracle"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway/telegram"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway/ton"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/journal"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/policy"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/settle"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store/postgres"
	redispkg "github.com/itsdeadcow/teleton-agent-sub001/internal/store/redis"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/tracing"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/verify"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/wager"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting settler",
		"ton_api", cfg.TON.APIURL,
		"ton_account", cfg.TON.Account,
		"treasury_account", cfg.TON.TreasuryAccount,
		"gift_api", cfg.Telegram.GiftAPIURL,
		"oracle", cfg.Oracle.URL,
		"buy_max_multiplier", cfg.Policy.BuyMaxMultiplier,
		"sell_min_multiplier", cfg.Policy.SellMinMultiplier,
	)

	// Initialize OpenTelemetry tracing
	tracingEndpoint := ""
	if cfg.Tracing.Enabled {
		tracingEndpoint = cfg.Tracing.Endpoint
	}
	shutdownTracing, err := tracing.Init(context.Background(), "settler", tracingEndpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	// Connect to PostgreSQL
	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(migrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Journal fan-out over redis streams is optional; without REDIS_URL the
	// journal is durable-only.
	var publisher journal.Publisher
	if cfg.Redis.URL != "" {
		stream, err := redispkg.NewStream(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer stream.Close()
		publisher = stream
		logger.Info("journal fan-out enabled", "stream", cfg.Redis.JournalStream)
	}

	// Repositories
	exchangeRepo := postgres.NewExchangeRepo(db)
	consumedRepo := postgres.NewConsumedTransferRepo(db)
	wagerRepo := postgres.NewWagerRepo(db)
	jackpotRepo := postgres.NewJackpotRepo(db)
	journalRepo := postgres.NewJournalRepo(db)

	// Gateways
	ledger := ton.NewClient(ton.Config{
		BaseURL: cfg.TON.APIURL,
		Timeout: cfg.TON.Timeout,
		RPS:     cfg.TON.RPS,
		Burst:   cfg.TON.Burst,
	}, logger)
	gifts := telegram.NewClient(telegram.Config{
		BotToken:   cfg.Telegram.BotToken,
		GiftAPIURL: cfg.Telegram.GiftAPIURL,
		Timeout:    cfg.Telegram.Timeout,
		RPS:        cfg.Telegram.RPS,
		Burst:      cfg.Telegram.Burst,
	}, logger)
	valueOracle := oracle.NewClient(cfg.Oracle.URL, cfg.Oracle.Timeout, logger)

	// Alerting
	var alerter alert.Alerter = alert.NopAlerter{}
	if cfg.Alert.WebhookURL != "" {
		alerter = alert.NewMultiAlerter(
			time.Duration(cfg.Alert.CooldownMin)*time.Minute,
			logger,
			alert.NewWebhookAlerter(cfg.Alert.WebhookURL),
		)
		logger.Info("webhook alerting enabled")
	}

	// Core services
	journalWriter := journal.NewWriter(journalRepo, publisher, cfg.Redis.JournalStream, logger)
	checker := policy.NewChecker(policy.Config{
		BuyMaxMultiplier:  cfg.Policy.BuyMaxMultiplier,
		SellMinMultiplier: cfg.Policy.SellMinMultiplier,
	})
	verifier := verify.New(ledger, gifts, consumedRepo, verify.Config{
		Account:       cfg.TON.Account,
		GiftAccount:   cfg.Telegram.GiftAccount,
		ToleranceNano: cfg.TON.ToleranceNano,
	}, logger)
	executor := settle.NewExecutor(exchangeRepo, wagerRepo, ledger, gifts, gifts, journalWriter, alerter, logger)

	exchangeSvc := exchange.NewService(
		exchangeRepo, checker, verifier, executor, valueOracle, gifts,
		exchange.Config{
			ProposalWindow:   time.Duration(cfg.Exchange.ProposalWindowSec) * time.Second,
			VerificationSkew: time.Duration(cfg.Exchange.VerifySkewSec) * time.Second,
		},
		logger,
	)

	table := wager.DefaultTable()
	if cfg.Wager.TablePath != "" {
		table, err = wager.LoadTable(cfg.Wager.TablePath)
		if err != nil {
			logger.Error("failed to load payout table", "path", cfg.Wager.TablePath, "error", err)
			os.Exit(1)
		}
		logger.Info("payout table loaded", "path", cfg.Wager.TablePath, "expected_value", table.ExpectedValue())
	}

	wagerSvc := wager.NewService(
		wagerRepo, jackpotRepo, verifier, executor, journalWriter, ledger, gifts, alerter, table,
		wager.Config{
			MinStakeNano:     cfg.Wager.MinStakeNano,
			MaxStakeNano:     cfg.Wager.MaxStakeNano,
			Cooldown:         time.Duration(cfg.Wager.CooldownSec) * time.Second,
			RateWindow:       time.Duration(cfg.Wager.RateWindowMin) * time.Minute,
			RateMax:          cfg.Wager.RateMax,
			BankrollFraction: cfg.Wager.BankrollFraction,
			FundingWindow:    time.Duration(cfg.Wager.FundingWindowSec) * time.Second,
			VerificationSkew: time.Duration(cfg.Wager.VerifySkewSec) * time.Second,
			TreasuryAccount:  cfg.TON.TreasuryAccount,
			JackpotCutBps:    cfg.Wager.JackpotCutBps,
			JackpotFloorNano: cfg.Wager.JackpotFloorNano,
			JackpotCooldown:  time.Duration(cfg.Wager.JackpotCooldownH) * time.Hour,
		},
		logger,
	)

	// Admin API with audit logging and per-IP rate limiting
	adminSrv := admin.NewServer(exchangeRepo, wagerRepo, exchangeSvc, wagerSvc, db.DB, logger)
	rateLimiter := admin.NewRateLimitMiddleware(logger)
	defer rateLimiter.Stop()
	adminHandler := rateLimiter.Wrap(admin.AuditMiddleware(logger, adminSrv.Handler()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runServer(gCtx, "metrics", cfg.Server.HealthPort, metricsHandler(), logger)
	})
	g.Go(func() error {
		return runServer(gCtx, "admin", cfg.Server.AdminPort, adminHandler, logger)
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("settler exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("settler shut down gracefully")
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func runServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
