// internal/pipeline/stages/scoreprofile/models.go
package scoreprofile

import "scholarship-advisor/internal/models"

type Input struct {
	Profile      *models.StudentProfile `json:"profile"`
	Scholarships []models.Scholarship   `json:"scholarships"`
}

type Output struct {
	Score *models.ProfileScore `json:"score"`
}

// scoringResponse mirrors the JSON schema the LLM is held to.
type scoringResponse struct {
	Strengths          []string           `json:"strengths"`
	Weaknesses         []string           `json:"weaknesses"`
	ImprovementActions []string           `json:"improvementActions"`
	TestScoreGaps      map[string]string  `json:"testScoreGaps"`
	ScholarshipFit     map[string]float64 `json:"scholarshipFit"`
	Extracurricular    struct {
		ActivityDiversity float64 `json:"activityDiversity"`
		Leadership        float64 `json:"leadership"`
		CommunityImpact   float64 `json:"communityImpact"`
	} `json:"extracurricular"`
}
