// internal/workers/eligibility/record-eligibility-decision/config.go
package recordeligibilitydecision

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
