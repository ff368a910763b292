// internal/workers/eligibility/notify-eligibility-decision/handler.go
package notifyeligibilitydecision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonaws "loan-eligibility-workers/internal/common/aws"
	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/metrics"
	"loan-eligibility-workers/internal/eligibility/decision"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-eligibility-decision"

	emailSubject = "Your loan eligibility result"
)

var (
	ErrInputValidationFailed  = errors.New("INPUT_VALIDATION_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

	errEmailSendFailed = fmt.Errorf("%w: email", ErrNotificationSendFailed)
	errSMSSendFailed   = fmt.Errorf("%w: sms", ErrNotificationSendFailed)
)

type Handler struct {
	config       *Config
	sesClient    commonaws.SESService
	snsClient    commonaws.SNSService
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, sesClient commonaws.SESService, snsClient commonaws.SNSService, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sesClient:    sesClient,
		snsClient:    snsClient,
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
		} else {
			channel := "sms"
			if errors.Is(err, errEmailSendFailed) {
				channel = "email"
			}
			h.failJob(client, job, apperrors.NewNotificationSendFailedError(channel, err))
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInputValidationFailed)
	}

	d := decision.Decision{Approved: input.Approved}
	result := d.ResultText()
	body := renderMessage(input.ApplicantName, input.ApplicationID, result)

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && input.Email != "" {
		if err := h.sendEmail(ctx, input.Email, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			return nil, fmt.Errorf("%w: %v", errEmailSendFailed, err)
		}
		emailSent = true
	}

	if h.config.SMSEnabled && input.Phone != "" {
		if err := h.sendSMS(ctx, input.Phone, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			// A retry would resend the email too.
			if !emailSent {
				return nil, fmt.Errorf("%w: %v", errSMSSendFailed, err)
			}
			return &Output{NotificationID: notificationID, Status: StatusPartial, Result: result, SentAt: sentAt}, nil
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("eligibility notification processed", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"notificationId": notificationID,
		"status":         status,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		Result:         result,
		SentAt:         sentAt,
	}, nil
}

func renderMessage(name, applicationID, result string) string {
	greeting := "Hello"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hello " + name
	}
	return fmt.Sprintf("%s, the result for loan application %s: %s.", greeting, applicationID, result)
}

func (h *Handler) sendEmail(ctx context.Context, to, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(emailSubject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	in := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SenderID != "" {
		in.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(h.config.SenderID),
			},
		}
	}
	_, err := h.snsClient.Publish(ctx, in)
	return err
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
