// internal/pipeline/stages/synthesizeadvice/models.go
package synthesizeadvice

import "scholarship-advisor/internal/models"

type Input struct {
	Consultation *models.ConsultationContext `json:"consultation"`
}

type Output struct {
	Recommendation *models.Recommendation `json:"recommendation"`
}

// adviceResponse mirrors the JSON schema the LLM is held to.
type adviceResponse struct {
	Summary        string   `json:"summary"`
	TopPicks       []string `json:"topPicks"`
	ActionPlan     []string `json:"actionPlan"`
	SuccessOutlook string   `json:"successOutlook"`
}
