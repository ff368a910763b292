// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"loan-eligibility-workers/internal/common/config"
	"loan-eligibility-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobObserver receives per-job timings.
type JobObserver interface {
	RecordJobProcessed(ctx context.Context, taskType string)
	RecordJobDuration(ctx context.Context, duration time.Duration, taskType string)
}

// WorkerManager opens one job worker per task type and closes them on shutdown.
type WorkerManager struct {
	client   zbc.Client
	observer JobObserver
	logger   logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerManager(client zbc.Client, observer JobObserver, log logger.Logger) *WorkerManager {
	return &WorkerManager{
		client:   client,
		observer: observer,
		logger:   log.WithFields(map[string]interface{}{"component": "worker-manager"}),
		workers:  make(map[string]worker.JobWorker),
	}
}

// Register opens a worker for taskType unless it is disabled. It reports whether a worker was opened.
func (m *WorkerManager) Register(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.workers[taskType]; exists {
		m.logger.Warn("worker already registered", map[string]interface{}{"taskType": taskType})
		return false
	}

	jobWorker := m.client.NewJobWorker().
		JobType(taskType).
		Handler(m.wrap(taskType, handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()
	m.workers[taskType] = jobWorker

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

func (m *WorkerManager) wrap(taskType string, handler JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handler.Handle(client, job)
		if m.observer != nil {
			ctx := context.Background()
			m.observer.RecordJobProcessed(ctx, taskType)
			m.observer.RecordJobDuration(ctx, time.Since(start), taskType)
		}
	}
}

// TaskTypes lists the registered task types.
func (m *WorkerManager) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.workers))
	for t := range m.workers {
		types = append(types, t)
	}
	return types
}

// Stop closes every worker, waiting for in-flight jobs.
func (m *WorkerManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for taskType, w := range m.workers {
		m.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
	m.workers = make(map[string]worker.JobWorker)
}
