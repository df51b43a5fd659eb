// internal/pipeline/stages/estimatefinances/models.go
package estimatefinances

import "scholarship-advisor/internal/models"

type Input struct {
	Profile      *models.StudentProfile `json:"profile"`
	Scholarships []models.Scholarship   `json:"scholarships"`
	HomeCurrency string                 `json:"homeCurrency,omitempty"`
}

type Output struct {
	Estimate *models.FinancialEstimate `json:"estimate"`
}

// costResponse mirrors the JSON schema the LLM is held to. All amounts are in
// the study country's currency.
type costResponse struct {
	Currency       string  `json:"currency"`
	ProgramYears   int     `json:"programYears"`
	TuitionPerYear float64 `json:"tuitionPerYear"`
	LivingPerYear  float64 `json:"livingPerYear"`
	OtherPerYear   float64 `json:"otherPerYear"`
	OneTimeCosts   float64 `json:"oneTimeCosts"`
}
