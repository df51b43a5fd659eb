// internal/pipeline/stages/findscholarships/models.go
package findscholarships

import "scholarship-advisor/internal/models"

type Input struct {
	Profile *models.StudentProfile `json:"profile"`
}

type Output struct {
	Scholarships []models.Scholarship `json:"scholarships"`
	Query        string               `json:"query"`
}

// scholarshipResponse mirrors the JSON schema the LLM is held to.
type scholarshipResponse struct {
	Scholarships []struct {
		Name         string `json:"name"`
		Organization string `json:"organization"`
		Value        string `json:"value"`
		Eligibility  string `json:"eligibility"`
		Requirements struct {
			GPA      string `json:"gpa"`
			Language string `json:"language"`
			Other    string `json:"other"`
		} `json:"requirements"`
		Deadline   string  `json:"deadline"`
		SourceURL  string  `json:"sourceUrl"`
		MatchScore float64 `json:"matchScore"`
	} `json:"scholarships"`
}
