// internal/workers/eligibility/index-eligibility-decision/config.go
package indexeligibilitydecision

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
	Refresh string
}

func LoadConfig(index string) *Config {
	if index == "" {
		index = "eligibility-decisions"
	}
	return &Config{
		Timeout: 10 * time.Second,
		Index:   index,
		Refresh: "false",
	}
}
