// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"loan-eligibility-workers/internal/common/config"
	"loan-eligibility-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNew_TracingDisabled(t *testing.T) {
	o := New("test-service", config.TracingConfig{}, logger.NewTestLogger(t))
	defer o.Shutdown()

	assert.False(t, o.TracingEnabled())

	ctx, span := o.StartSpan(context.Background(), "evaluate", attribute.String("applicationId", "app-001"))
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.End()

	o.RecordJobProcessed(context.Background(), "predict-loan-eligibility")
	o.RecordJobDuration(context.Background(), 12*time.Millisecond, "predict-loan-eligibility")
}

func TestNew_TracingEnabledWithoutEndpoint(t *testing.T) {
	o := New("test-service", config.TracingConfig{Enabled: true}, logger.NewTestLogger(t))
	defer o.Shutdown()

	assert.False(t, o.TracingEnabled())
}

func TestNew_TracingEnabled(t *testing.T) {
	o := New("test-service", config.TracingConfig{
		Enabled:        true,
		JaegerEndpoint: "http://127.0.0.1:14268/api/traces",
	}, logger.NewTestLogger(t))

	assert.True(t, o.TracingEnabled())

	_, span := o.StartSpan(context.Background(), "evaluate")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	o.Shutdown()
}
