// cmd/worker-manager/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"search-orchestrator/internal/audit"
	"search-orchestrator/internal/billing"
	"search-orchestrator/internal/common/camunda"
	"search-orchestrator/internal/common/config"
	"search-orchestrator/internal/common/database"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/common/observability"
	"search-orchestrator/internal/fetchqueue"
	"search-orchestrator/internal/llm"
	"search-orchestrator/internal/policy"
	"search-orchestrator/internal/retrieval"
	"search-orchestrator/internal/search"

	runsearch "search-orchestrator/internal/workers/retrieval/run-search"
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
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.App.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Redis with retry ---
	// The blocklist store is optional; without it every result passes the
	// policy filter unchanged.
	var redisClient *database.RedisClient
	if cfg.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Warn("Redis not configured, blocklist filtering disabled")
	}

	// --- Init Elasticsearch with retry ---
	var recorder retrieval.Recorder = audit.NopRecorder{}
	if len(cfg.Elasticsearch.Addresses) > 0 {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		recorder = audit.NewElasticRecorder(esClient, cfg.Elasticsearch.AuditIndex, log)
	} else {
		zapLog.Warn("Elasticsearch not configured, audit recording disabled")
	}

	// --- Domain clients ---
	completer, err := llm.NewClient(cfg.Completion)
	if err != nil {
		zapLog.Fatal("completion client init failed", zap.Error(err))
	}

	searchClient := search.NewClient(cfg.Search, log)
	queue := fetchqueue.NewClient(cfg.FetchQueue, log)
	meter := billing.NewFlatMeter(cfg.Billing.CreditsPerFetch)

	var blocklist retrieval.Blocklist
	if redisClient != nil {
		blocklist = policy.NewRedisBlocklist(redisClient)
	}

	dispatcher, err := retrieval.NewDispatcher(queue, meter, cfg.FetchQueue.MaxConcurrency, cfg.FetchQueue.DefaultTimeout, log)
	if err != nil {
		zapLog.Fatal("dispatcher init failed", zap.Error(err))
	}
	defer dispatcher.Close()

	controller := retrieval.NewController(
		retrieval.NewExpander(completer, cfg.Retrieval.MaxVariants, log),
		retrieval.NewFanout(searchClient, log),
		retrieval.NewFuser(cfg.Retrieval.FusionK, cfg.Retrieval.FusionBeta),
		retrieval.NewLabeler(cfg.Retrieval.CategoryRules),
		retrieval.NewBlockedFilter(blocklist, log),
		dispatcher,
		retrieval.NewEvaluator(completer, log),
		recorder,
		obs,
		retrieval.ControllerConfig{
			MaxIterations:        cfg.Retrieval.MaxIterations,
			ConvergenceThreshold: cfg.Retrieval.ConvergenceThreshold,
			MaxSpans:             cfg.Retrieval.MaxSpans,
			SearchFilters:        retrieval.SearchFilters{Count: cfg.Search.MaxResults},
		},
		log,
	)

	// --- Register Workers ---
	workerCfg := runsearch.DefaultConfig()
	workerCfg.RequestDeadline = cfg.Retrieval.RequestDeadline
	workerCfg.DefaultFetchTimeout = cfg.FetchQueue.DefaultTimeout

	handler := runsearch.NewHandler(workerCfg, controller, log)

	runSearchWorker := camunda.NewWorker(camundaClient.GetClient(), runsearch.TaskType, cfg.Camunda.MaxJobsActive, handler, zapLog)
	runSearchWorker.Start()

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
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
					"time":   time.Now().Format(time.RFC3339),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runSearchWorker.Stop(shutdownCtx)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zapLog.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
