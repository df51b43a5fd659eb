// internal/pipeline/stages/estimatefinances/config.go
package estimatefinances

import "time"

type Config struct {
	Timeout time.Duration

	// DefaultHomeCurrency is used when the student never states one.
	DefaultHomeCurrency string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             30 * time.Second,
		DefaultHomeCurrency: "USD",
	}
}
