// cmd/scout/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fretwatch/internal/collection"
	"fretwatch/internal/common/aws"
	"fretwatch/internal/common/config"
	"fretwatch/internal/common/database"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/common/observability"
	"fretwatch/internal/comps"
	"fretwatch/internal/history"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/lifecycle"
	"fretwatch/internal/marketdata"
	"fretwatch/internal/models"
	"fretwatch/internal/notify"
	"fretwatch/internal/pipeline"
	"fretwatch/internal/predict"
	"fretwatch/internal/scoring"
	"fretwatch/internal/sink"
	"fretwatch/internal/valuation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scout...",
		zap.String("version", cfg.App.Version),
		zap.Int("pollIntervalSeconds", cfg.Scout.PollIntervalSeconds),
		zap.Int("gracePeriodSeconds", cfg.Scout.GracePeriodSeconds),
	)

	obs := observability.New("scout")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Notification Channels ---
	var email notify.EmailSender
	if cfg.Notifications.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		email = sesClient
		zapLog.Info("SES client initialized")
	}

	var topic notify.TopicPublisher
	if cfg.Notifications.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		topic = snsClient
		zapLog.Info("SNS client initialized")
	}

	// --- Assemble the Pipeline ---
	kb := knowledge.Default()

	var lookup valuation.RangeLookup
	if cfg.MarketData.BaseURL != "" {
		lookup = marketdata.NewClient(cfg.MarketData, log)
	} else {
		zapLog.Warn("no market data base URL configured, price bands will stay unresolved")
	}

	historyStore := history.NewStore(pg)

	var provider predict.Provider = predict.NullProvider{}
	if cfg.Budget.MLEnabled && cfg.ML.ModelPath != "" {
		provider = predict.NewFileProvider(cfg.ML.ModelPath, kb, log)
	}

	snapshotCache := pipeline.NewRedisSnapshotCache(redis)

	runner := pipeline.NewRunner(cfg, pipeline.RunnerDeps{
		Source:     pipeline.NewFeedSource(cfg.Scout.FeedURL, 30*time.Second),
		Records:    lifecycle.NewRedisRecordStore(redis),
		Tracker:    lifecycle.NewTracker(time.Duration(cfg.Scout.GracePeriodSeconds)*time.Second, log),
		Valuator:   valuation.NewValuator(kb, lookup, historyStore, log),
		Engine:     scoring.NewEngine(kb, cfg.Budget, log),
		Provider:   provider,
		Collection: collection.NewLoader(pg),
		History:    historyStore,
		Sink:       sink.New(pg, log),
		Alerter:    notify.New(cfg.Notifications, email, topic, notify.NewRedisDedupeStore(redis), log),
		Comps:      comps.NewStore(esClient, cfg.Database.Elasticsearch.CompsIndex, log),
		Snapshots:  snapshotCache,
		Obs:        obs,
	}, log)

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Scout.MetricsAddress))
		if err := http.ListenAndServe(cfg.Scout.MetricsAddress, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Polling Loop ---
	runCycle := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		ranked, err := runner.Run(cycleCtx)
		if err != nil {
			zapLog.Error("cycle failed", zap.Error(err))
			return
		}
		printRecommendations(cycleCtx, ranked, snapshotCache, cfg.Budget)
	}

	ticker := time.NewTicker(time.Duration(cfg.Scout.PollIntervalSeconds) * time.Second)
	defer ticker.Stop()

	runCycle()
	for {
		select {
		case <-ctx.Done():
			zapLog.Info("Shutdown signal received, stopping scout...")
			zapLog.Info("Scout stopped gracefully")
			return
		case <-ticker.C:
			runCycle()
		}
	}
}

// printRecommendations renders the ranked buy list to the terminal. The
// snapshot cache fills in brand/model since the breakdowns only carry ids.
func printRecommendations(ctx context.Context, ranked []models.ScoreBreakdown, cache pipeline.SnapshotCache, budget config.BudgetConfig) {
	if len(ranked) == 0 {
		return
	}

	header := color.New(color.FgCyan, color.Bold)
	affordable := color.New(color.FgGreen)
	stretch := color.New(color.FgYellow)

	header.Printf("\nTop %d picks (budget remaining $%.0f)\n", len(ranked), budget.Remaining())
	for i, b := range ranked {
		label := b.ListingID
		if snap, found, err := cache.Get(ctx, b.ListingID); err == nil && found {
			label = fmt.Sprintf("%s %s", snap.Brand, snap.Model)
			if snap.Year != nil {
				label = fmt.Sprintf("%d %s", *snap.Year, label)
			}
		}

		price := "price unknown"
		if b.Price != nil {
			price = fmt.Sprintf("$%.0f", *b.Price)
		}

		line := affordable
		if !b.Affordable {
			line = stretch
		}
		line.Printf("  %2d. %-40s %6.1f  %s\n", i+1, label, b.Final, price)
	}
	fmt.Println()
}
