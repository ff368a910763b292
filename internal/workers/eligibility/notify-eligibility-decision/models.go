// internal/workers/eligibility/notify-eligibility-decision/models.go
package notifyeligibilitydecision

type Input struct {
	ApplicationID string `json:"applicationId"`
	Approved      bool   `json:"approved"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ApplicantName string `json:"applicantName,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "partial", "disabled"
	Result         string `json:"result"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)
