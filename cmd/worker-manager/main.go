// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	commonaws "loan-eligibility-workers/internal/common/aws"
	"loan-eligibility-workers/internal/common/camunda"
	"loan-eligibility-workers/internal/common/config"
	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/database"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/observability"
	"loan-eligibility-workers/pkg/registry"

	"loan-eligibility-workers/internal/api"
	"loan-eligibility-workers/internal/eligibility"
	"loan-eligibility-workers/internal/eligibility/classifier"

	ied "loan-eligibility-workers/internal/workers/eligibility/index-eligibility-decision"
	ned "loan-eligibility-workers/internal/workers/eligibility/notify-eligibility-decision"
	ple "loan-eligibility-workers/internal/workers/eligibility/predict-loan-eligibility"
	red "loan-eligibility-workers/internal/workers/eligibility/record-eligibility-decision"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerTimeout prefers the worker config, then the registry entry, then def.
func workerTimeout(cfg *config.Config, reg *registry.ActivityRegistry, taskType string, def time.Duration) time.Duration {
	if ms := cfg.Workers[taskType].Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	if reg != nil {
		if a, ok := reg.FindByTaskType(taskType); ok {
			return a.TimeoutDuration(def)
		}
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.FromConfig(cfg.Logging, cfg.App.Name)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan eligibility worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("modelType", cfg.Model.Type),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, log)
	defer obs.Shutdown()

	ctx := context.Background()

	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		zapLog.Warn("activity registry not loaded, input schemas disabled", zap.String("path", cfg.RegistryPath), zap.Error(err))
		reg = nil
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromSettings(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if created, err := esClient.EnsureDecisionIndex(ctx, cfg.Database.Elasticsearch.DecisionIndex); err != nil {
		zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
	} else if created {
		zapLog.Info("decision index created", zap.String("index", cfg.Database.Elasticsearch.DecisionIndex))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS messaging clients ---
	awsClients, err := commonaws.NewClients(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws clients failed", zap.Error(err))
	}

	// --- Classifier and evaluator ---
	model, err := classifier.New(cfg.Model, redis.Client, log)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			zapLog.Fatal("classifier setup failed",
				zap.String("code", string(stdErr.Code)),
				zap.String("message", stdErr.Message),
				zap.String("details", stdErr.Details))
		}
		zapLog.Fatal("classifier setup failed", zap.Error(err))
	}
	evaluator := eligibility.NewEvaluator(model, log)

	// --- Register workers ---
	manager := camunda.NewWorkerManager(zeebe.GetClient(), obs, log)

	var predictSchema map[string]interface{}
	if reg != nil {
		predictSchema = reg.InputSchema(ple.TaskType)
	}
	manager.Register(ple.TaskType, cfg.Workers[ple.TaskType], ple.NewHandler(
		&ple.Config{
			Timeout:     workerTimeout(cfg, reg, ple.TaskType, 10*time.Second),
			InputSchema: predictSchema,
		},
		evaluator, log,
	))

	manager.Register(red.TaskType, cfg.Workers[red.TaskType], red.NewHandler(
		&red.Config{Timeout: workerTimeout(cfg, reg, red.TaskType, 10*time.Second)},
		pg.DB, log,
	))

	indexCfg := ied.LoadConfig(cfg.Database.Elasticsearch.DecisionIndex)
	indexCfg.Timeout = workerTimeout(cfg, reg, ied.TaskType, indexCfg.Timeout)
	manager.Register(ied.TaskType, cfg.Workers[ied.TaskType], ied.NewHandler(indexCfg, esClient.Client, log))

	notifyCfg := ned.LoadConfig(cfg.Notifications)
	notifyCfg.Timeout = workerTimeout(cfg, reg, ned.TaskType, notifyCfg.Timeout)
	manager.Register(ned.TaskType, cfg.Workers[ned.TaskType], ned.NewHandler(notifyCfg, awsClients.SES, awsClients.SNS, log))

	zapLog.Info("Workers registered", zap.Strings("taskTypes", manager.TaskTypes()))

	// --- Health, Metrics & Prediction API ---
	server := api.NewServer(cfg.Server, evaluator, obs, log)
	server.AddReadinessCheck("zeebe", zeebe.HealthCheck)
	server.AddReadinessCheck("postgres", pg.Ping)
	server.AddReadinessCheck("elasticsearch", esClient.Ping)
	server.AddReadinessCheck("redis", redis.Ping)

	go func() {
		if err := server.Start(); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	manager.Stop()

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
