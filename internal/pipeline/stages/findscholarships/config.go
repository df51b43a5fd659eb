// internal/pipeline/stages/findscholarships/config.go
package findscholarships

import "time"

type Config struct {
	Timeout    time.Duration
	MaxKept    int
	FullBoost  float64
	PartBoost  float64
	NameBoost  float64
	FieldBoost float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    45 * time.Second,
		MaxKept:    10,
		FullBoost:  15,
		PartBoost:  10,
		NameBoost:  20,
		FieldBoost: 10,
	}
}
