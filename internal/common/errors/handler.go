// internal/common/errors/handler.go
package errors

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed job back to the engine, either as a failure with a
// retry budget or as a BPMN error the process model can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Outcome is what the engine is told about a failed job.
type Outcome struct {
	Throw   bool // throw a BPMN error instead of failing the job
	Retries int  // retries left on the job when Throw is false
}

// Decide picks the outcome for stdErr given the retries the engine still has for the job.
// Retryable codes fail the job until the budget is spent; the last attempt throws.
func Decide(stdErr *StandardError, jobRetries int32) Outcome {
	maxRetries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable || maxRetries == 0 || jobRetries <= 1 {
		return Outcome{Throw: true}
	}
	return Outcome{Retries: RemainingRetries(jobRetries, maxRetries)}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	outcome := Decide(stdErr, job.Retries)

	h.logError(job, stdErr, bpmnErr, outcome)

	var sendErr error
	if outcome.Throw {
		sendErr = h.throwBPMNError(ctx, client, job, bpmnErr)
	} else {
		sendErr = h.failJob(ctx, client, job, bpmnErr, outcome.Retries)
	}
	if sendErr != nil {
		h.logger.Error("failed to report job error", map[string]interface{}{
			"jobKey":    job.Key,
			"errorCode": bpmnErr.Code,
			"error":     sendErr,
		})
	}
}

// normalizeError unwraps a StandardError, or wraps anything else as a non-retryable internal error.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, outcome Outcome) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":             job.Key,
		"jobType":            job.Type,
		"processInstanceKey": job.ProcessInstanceKey,
		"errorCode":          string(stdErr.Code),
		"bpmnErrorCode":      bpmnErr.Code,
		"message":            bpmnErr.Message,
		"details":            stdErr.Details,
		"errorCategory":      GetErrorCategory(stdErr.Code),
		"thrown":             outcome.Throw,
		"retriesLeft":        outcome.Retries,
	})
}

// RemainingRetries is one less than the engine has left, capped at maxRetries.
func RemainingRetries(jobRetries int32, maxRetries int) int {
	remaining := int(jobRetries) - 1
	if remaining > maxRetries {
		remaining = maxRetries
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
