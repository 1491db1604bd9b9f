package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/consent-crawler/internal/adapter/chromedp_page"
	"github.com/user/consent-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/consent-crawler/internal/adapter/redis"
	"github.com/user/consent-crawler/internal/analysis"
	"github.com/user/consent-crawler/internal/clickstream"
	"github.com/user/consent-crawler/internal/consent"
	"github.com/user/consent-crawler/internal/delivery/http/handler"
	"github.com/user/consent-crawler/internal/delivery/http/router"
	"github.com/user/consent-crawler/internal/repository"
	"github.com/user/consent-crawler/internal/usecase"
	"github.com/user/consent-crawler/pkg/config"
	"github.com/user/consent-crawler/pkg/logger"
	"github.com/user/consent-crawler/pkg/metrics"
)

const idleQueuePollInterval = 5 * time.Second

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	exp, err := config.LoadExperiment(cfg.ExperimentPath)
	if err != nil {
		slog.Error("Unable to load experiment config", "path", cfg.ExperimentPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Experiment config loaded",
		"num_clickstreams", exp.NumClickstreams,
		"clickstream_length", exp.ClickstreamLength,
		"shingle_block_size", exp.ShingleBlockSize,
		"noise_control", exp.NoiseControlEnabled(),
		"reject_mode", exp.RejectMode,
	)

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Database Connections ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	resultRepo := postgres.NewResultRepo(dbpool)
	failedRepo := postgres.NewFailedSiteRepo(dbpool)
	sessions := chromedp_page.NewSessionFactory(cfg.PageLoadTimeout)

	// --- Experiment Pipeline ---
	corpus := consent.Corpus{
		Keywords:   exp.TrackingKeywords,
		ExactWords: exp.TrackingExactWords,
	}
	injector := consent.NewInjector(corpus)

	rejectMode := consent.Mode(exp.RejectMode)
	if !rejectMode.IsValid() {
		slog.Warn("Unknown reject mode, using reject-tracking", "reject_mode", exp.RejectMode)
		rejectMode = consent.ModeRejectTracking
	}
	runner := clickstream.NewRunner(sessions, injector, clickstream.Config{
		MaxActions: exp.ClickstreamLength,
		Settle:     exp.SettleDelay(),
		RejectMode: rejectMode,
	})

	reduceOpts := analysis.Options{
		BlockSize:    exp.ShingleBlockSize,
		NoiseControl: exp.NoiseControlEnabled(),
	}

	// --- Use Cases ---
	siteManager := usecase.NewSiteManager(visitedRepo, queueRepo, resultRepo, failedRepo)
	classifier := usecase.NewClassifier(
		queueRepo, resultRepo, failedRepo,
		sessions, runner,
		exp.NumClickstreams, exp.SettleDelay(), reduceOpts,
	)

	// --- Workers ---
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, id, classifier, queueRepo)
		}(i)
	}
	slog.Info("Classification workers started", "count", cfg.Workers)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(siteManager)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	wg.Wait()
	slog.Info("Workers drained, exiting")
}

// runWorker loops over the queue until the context is cancelled. An empty
// queue backs off instead of spinning.
func runWorker(ctx context.Context, id int, classifier usecase.Classifier, queue repository.QueueRepository) {
	ticker := time.NewTicker(idleQueuePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Worker stopping", "worker", id)
			return
		default:
		}

		size, err := queue.Size(ctx)
		if err == nil {
			metrics.SitesInQueue.Set(float64(size))
		}
		if err != nil || size == 0 {
			select {
			case <-ctx.Done():
				slog.Info("Worker stopping", "worker", id)
				return
			case <-ticker.C:
			}
			continue
		}

		if err := classifier.ProcessNextSite(ctx); err != nil {
			slog.Error("Worker failed to process website", "worker", id, "error", err)
		}
	}
}
