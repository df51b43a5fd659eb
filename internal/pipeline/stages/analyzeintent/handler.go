// internal/pipeline/stages/analyzeintent/handler.go
package analyzeintent

import (
	"context"
	"fmt"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/prompts"
)

const (
	StageName = "analyze-intent"
)

// Completer is the slice of the LLM client this stage needs.
type Completer interface {
	CompleteStructured(ctx context.Context, system, user, schemaJSON string, out interface{}) error
}

type Handler struct {
	config *Config
	genai  Completer
	logger logger.Logger
}

func NewHandler(config *Config, genai Completer, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		genai:  genai,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	var resp profileResponse
	err := h.genai.CompleteStructured(ctx,
		prompts.IntentSystem,
		prompts.IntentUser(input.Request, input.DocumentText),
		prompts.IntentSchema,
		&resp,
	)
	if err != nil {
		return nil, apperrors.NewIntentAnalysisFailedError(err)
	}

	profile := &models.StudentProfile{
		TargetCountry:          resp.TargetCountry,
		FieldOfStudy:           resp.FieldOfStudy,
		DegreeLevel:            resp.DegreeLevel,
		BudgetRange:            resp.BudgetRange,
		GPA:                    resp.GPA,
		Summary:                resp.Summary,
		CompletenessScore:      clampScore(resp.CompletenessScore),
		MissingInfo:            resp.MissingInfo,
		ClarificationQuestions: resp.ClarificationQuestions,
	}
	profile.TestScores.IELTS = resp.TestScores.IELTS
	profile.TestScores.TOEFL = resp.TestScores.TOEFL
	profile.TestScores.SAT = resp.TestScores.SAT

	if profile.NeedsClarification() && len(profile.ClarificationQuestions) == 0 {
		profile.ClarificationQuestions = defaultQuestions(profile.MissingInfo)
	}

	h.logger.Info("profile extracted", map[string]interface{}{
		"targetCountry": profile.TargetCountry,
		"fieldOfStudy":  profile.FieldOfStudy,
		"completeness":  profile.CompletenessScore,
	})

	return &Output{Profile: profile}, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// defaultQuestions covers the case where the model flags missing info but
// forgets to phrase questions for it.
func defaultQuestions(missing []string) []string {
	if len(missing) == 0 {
		return []string{"Could you tell me more about your study plans, grades, and budget?"}
	}
	questions := make([]string, 0, len(missing))
	for _, m := range missing {
		questions = append(questions, fmt.Sprintf("Could you share your %s?", m))
	}
	return questions
}
