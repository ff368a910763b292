// internal/eligibility/evaluator.go
package eligibility

import (
	"context"
	"time"

	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/metrics"
	"loan-eligibility-workers/internal/eligibility/classifier"
	"loan-eligibility-workers/internal/eligibility/decision"
	"loan-eligibility-workers/internal/eligibility/features"
)

// Result is one evaluated application.
type Result struct {
	Features   features.FeatureVector
	Label      string
	Decision   decision.Decision
	Recognized bool
}

// Evaluator runs encode, predict and normalize for a single application.
// It holds no per-request state and is shared by the workers and the HTTP API.
type Evaluator struct {
	encoder    *features.Encoder
	classifier classifier.Classifier
	logger     logger.Logger
}

func NewEvaluator(c classifier.Classifier, log logger.Logger) *Evaluator {
	return &Evaluator{
		encoder:    features.NewEncoder(),
		classifier: c,
		logger:     log.WithFields(map[string]interface{}{"component": "evaluator"}),
	}
}

// Evaluate never fails on malformed input. A classifier failure is returned as
// *classifier.ClassificationError.
func (e *Evaluator) Evaluate(ctx context.Context, raw features.RawApplication) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	vector := e.encoder.Encode(raw)

	label, err := e.classifier.Predict(ctx, vector)
	if err != nil {
		metrics.ClassificationFailures.Inc()
		e.logger.Error("classification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, classifier.Wrap(err)
	}

	d, recognized := decision.Classify(label)
	text := decision.LabelText(label)
	if !recognized {
		metrics.EligibilityUnrecognizedLabels.Inc()
		e.logger.Warn("unrecognized classifier label treated as rejection", map[string]interface{}{
			"label": text,
		})
	}
	metrics.EligibilityDecisions.WithLabelValues(d.Status).Inc()

	e.logger.Debug("application evaluated", map[string]interface{}{
		"status":   d.Status,
		"label":    text,
		"duration": time.Since(start).String(),
	})

	return &Result{
		Features:   vector,
		Label:      text,
		Decision:   d,
		Recognized: recognized,
	}, nil
}
