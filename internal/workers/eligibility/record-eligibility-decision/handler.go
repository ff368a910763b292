// internal/workers/eligibility/record-eligibility-decision/handler.go
package recordeligibilitydecision

import (
	"context"
	"database/sql"
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
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "record-eligibility-decision"

	// pqUniqueViolation is the SQLSTATE for a UNIQUE constraint failure.
	pqUniqueViolation = "23505"
)

var (
	ErrInputValidationFailed = errors.New("INPUT_VALIDATION_FAILED")
	ErrDatabaseInsertFailed  = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateDecision     = errors.New("DUPLICATE_DECISION")
)

type Handler struct {
	config       *Config
	db           *sql.DB
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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
		switch {
		case errors.Is(err, ErrInputValidationFailed):
			h.failJob(client, job, apperrors.NewInputValidationFailedError(err.Error()))
		case errors.Is(err, ErrDuplicateDecision):
			h.failJob(client, job, apperrors.NewDuplicateDecisionError(input.ApplicationID))
		default:
			h.failJob(client, job, apperrors.NewDatabaseInsertFailedError(err))
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInputValidationFailed)
	}

	// The status column is derived from approved, never trusted from the caller.
	status := decision.StatusRejected
	if input.Approved {
		status = decision.StatusApproved
	}
	if input.Status != "" && input.Status != status {
		h.logger.Warn("status does not match approved flag, using approved", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"status":        input.Status,
			"approved":      input.Approved,
		})
	}

	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM eligibility_decisions
			WHERE application_id = $1
		)`, input.ApplicationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: decision already recorded for application %s", ErrDuplicateDecision, input.ApplicationID)
	}

	decisionID := uuid.New().String()
	recordedAt := time.Now().UTC().Format(time.RFC3339)

	featuresJSON, err := json.Marshal(input.Features)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal features: %v", ErrDatabaseInsertFailed, err)
	}
	application := input.Application
	if application == nil {
		application = map[string]interface{}{}
	}
	applicationJSON, err := json.Marshal(application)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal application: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO eligibility_decisions (
			id, application_id, approved, status, label,
			features, application, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		decisionID,
		input.ApplicationID,
		input.Approved,
		status,
		input.Label,
		featuresJSON,
		applicationJSON,
		recordedAt,
	)
	if err != nil {
		// A concurrent job can win the race between the existence check and this insert.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("%w: decision already recorded for application %s", ErrDuplicateDecision, input.ApplicationID)
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit log is best effort.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        status,
		"label":         input.Label,
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"eligibility_decision_recorded",
		"eligibility_decision",
		decisionID,
		auditDetailsJSON,
		recordedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"decisionId": decisionID,
		})
	}

	h.logger.Info("eligibility decision recorded", map[string]interface{}{
		"decisionId":    decisionID,
		"applicationId": input.ApplicationID,
		"status":        status,
	})

	return &Output{
		DecisionID: decisionID,
		RecordedAt: recordedAt,
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
