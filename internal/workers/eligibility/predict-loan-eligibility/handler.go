// internal/workers/eligibility/predict-loan-eligibility/handler.go
package predictloaneligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/metrics"
	"loan-eligibility-workers/internal/common/validation"
	"loan-eligibility-workers/internal/eligibility"
	"loan-eligibility-workers/internal/eligibility/features"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "predict-loan-eligibility"
)

var (
	ErrInputValidationFailed = errors.New("INPUT_VALIDATION_FAILED")
	ErrClassificationFailed  = errors.New("CLASSIFICATION_FAILED")
)

type Handler struct {
	config       *Config
	evaluator    *eligibility.Evaluator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, evaluator *eligibility.Evaluator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		evaluator:    evaluator,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInputValidationFailed):
			h.failJob(client, job, apperrors.NewInputValidationFailedError(err.Error()))
		case errors.Is(err, ErrClassificationFailed):
			h.failJob(client, job, apperrors.NewClassificationFailedError(err))
		default:
			h.failJob(client, job, err)
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.validate(input); err != nil {
		return nil, err
	}

	result, err := h.evaluator.Evaluate(ctx, features.RawApplication(input.Application))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        result.Decision.Status,
		"recognized":    result.Recognized,
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Approved:      result.Decision.Approved,
		Status:        result.Decision.Status,
		Label:         result.Label,
		Recognized:    result.Recognized,
		Features:      result.Features.Slice(),
		NamedFeatures: result.Features.Named(),
		EvaluatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// validate checks the job envelope only; the application fields themselves are never rejected.
func (h *Handler) validate(input *Input) error {
	if input.ApplicationID == "" {
		return fmt.Errorf("%w: applicationId is required", ErrInputValidationFailed)
	}
	if input.Application == nil {
		return fmt.Errorf("%w: application is required", ErrInputValidationFailed)
	}

	doc := map[string]interface{}{
		"applicationId": input.ApplicationID,
		"application":   input.Application,
	}
	result, err := validation.ValidateInput(doc, h.config.InputSchema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInputValidationFailed, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrInputValidationFailed, result.Error())
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"status": output.Status,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
