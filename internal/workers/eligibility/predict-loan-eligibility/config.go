// internal/workers/eligibility/predict-loan-eligibility/config.go
package predictloaneligibility

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema map[string]interface{} // from the activity registry; nil skips validation
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
