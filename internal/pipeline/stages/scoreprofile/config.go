// internal/pipeline/stages/scoreprofile/config.go
package scoreprofile

import "time"

type Config struct {
	Timeout time.Duration

	// Extracurricular sub-score weights, applied to the 0-100 LLM ratings.
	DiversityWeight  float64
	LeadershipWeight float64
	CommunityWeight  float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DiversityWeight:  0.2,
		LeadershipWeight: 0.15,
		CommunityWeight:  0.15,
	}
}
