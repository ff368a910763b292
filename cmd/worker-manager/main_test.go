// cmd/worker-manager/main_test.go
package main

import (
	"errors"
	"testing"
	"time"

	"loan-eligibility-workers/internal/common/config"
	"loan-eligibility-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestRetryWithBackoff(t *testing.T) {
	log := zaptest.NewLogger(t)

	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond, log, "flaky operation")

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	log := zaptest.NewLogger(t)
	cause := errors.New("connection refused")

	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		return cause
	}, 3, time.Millisecond, log, "postgres")

	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "postgres failed after 3 attempts")
}

func TestWorkerTimeout(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "notify", TaskType: "notify-eligibility-decision", Timeout: "45s"},
	}}
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"predict-loan-eligibility": {Timeout: 2500},
	}}

	assert.Equal(t, 2500*time.Millisecond, workerTimeout(cfg, reg, "predict-loan-eligibility", time.Second))
	assert.Equal(t, 45*time.Second, workerTimeout(cfg, reg, "notify-eligibility-decision", time.Second))
	assert.Equal(t, time.Second, workerTimeout(cfg, reg, "index-eligibility-decision", time.Second))
	assert.Equal(t, time.Second, workerTimeout(cfg, nil, "index-eligibility-decision", time.Second))
}
