// internal/workers/eligibility/notify-eligibility-decision/config.go
package notifyeligibilitydecision

import (
	"time"

	"loan-eligibility-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	Timeout      time.Duration
}

func LoadConfig(n config.NotificationConfig) *Config {
	return &Config{
		EmailEnabled: n.Email.Enabled,
		SMSEnabled:   n.SMS.Enabled,
		FromEmail:    n.Email.FromEmail,
		SenderID:     n.SMS.SenderID,
		Timeout:      30 * time.Second,
	}
}
