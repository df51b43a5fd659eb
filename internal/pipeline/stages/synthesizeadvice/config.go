// internal/pipeline/stages/synthesizeadvice/config.go
package synthesizeadvice

import "time"

type Config struct {
	Timeout time.Duration

	// MaxTopPicks caps the picks surfaced in the final report.
	MaxTopPicks int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxTopPicks: 3,
	}
}
