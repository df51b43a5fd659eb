// internal/pipeline/stages/analyzeintent/models.go
package analyzeintent

import "scholarship-advisor/internal/models"

type Input struct {
	Request      string `json:"request"`
	DocumentText string `json:"documentText,omitempty"`
}

type Output struct {
	Profile *models.StudentProfile `json:"profile"`
}

// profileResponse mirrors the JSON schema the LLM is held to.
type profileResponse struct {
	TargetCountry string  `json:"targetCountry"`
	FieldOfStudy  string  `json:"fieldOfStudy"`
	DegreeLevel   string  `json:"degreeLevel"`
	BudgetRange   string  `json:"budgetRange"`
	GPA           float64 `json:"gpa"`
	TestScores    struct {
		IELTS float64 `json:"ielts"`
		TOEFL float64 `json:"toefl"`
		SAT   float64 `json:"sat"`
	} `json:"testScores"`
	Summary                string   `json:"summary"`
	CompletenessScore      int      `json:"completenessScore"`
	MissingInfo            []string `json:"missingInfo"`
	ClarificationQuestions []string `json:"clarificationQuestions"`
}
