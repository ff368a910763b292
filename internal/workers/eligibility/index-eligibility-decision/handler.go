// internal/workers/eligibility/index-eligibility-decision/handler.go
package indexeligibilitydecision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/metrics"
	"loan-eligibility-workers/internal/eligibility/decision"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "index-eligibility-decision"
)

var (
	ErrInputValidationFailed = errors.New("INPUT_VALIDATION_FAILED")
	ErrIndexFailed           = errors.New("INDEX_FAILED")
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrInputValidationFailed) {
			h.failJob(client, job, apperrors.NewInputValidationFailedError(err.Error()))
		} else if ctx.Err() == context.DeadlineExceeded {
			h.failJob(client, job, apperrors.NewTimeoutError("elasticsearch", err))
		} else {
			h.failJob(client, job, apperrors.NewIndexFailedError(h.config.Index, err))
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DecisionID == "" {
		return nil, fmt.Errorf("%w: decisionId is required", ErrInputValidationFailed)
	}
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInputValidationFailed)
	}

	status := decision.StatusRejected
	if input.Approved {
		status = decision.StatusApproved
	}

	doc := decisionDocument{
		DecisionID:    input.DecisionID,
		ApplicationID: input.ApplicationID,
		Approved:      input.Approved,
		Status:        status,
		Label:         input.Label,
		Features:      input.NamedFeatures,
		RecordedAt:    input.RecordedAt,
		IndexedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", ErrIndexFailed, err)
	}

	// Document id is the decision id so job retries overwrite instead of duplicating.
	res, err := h.client.Index(
		h.config.Index,
		bytes.NewReader(body),
		h.client.Index.WithContext(ctx),
		h.client.Index.WithDocumentID(input.DecisionID),
		h.client.Index.WithRefresh(h.config.Refresh),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrIndexFailed, res.String())
	}

	var parsed indexResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrIndexFailed, err)
	}

	index := parsed.Index
	if index == "" {
		index = h.config.Index
	}

	h.logger.Info("eligibility decision indexed", map[string]interface{}{
		"decisionId": input.DecisionID,
		"index":      index,
		"result":     parsed.Result,
	})

	return &Output{
		Indexed: true,
		Index:   index,
		Result:  parsed.Result,
	}, nil
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
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
