// internal/pipeline/stages/scoreprofile/handler.go
package scoreprofile

import (
	"context"
	"math"
	"strconv"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/prompts"
)

const (
	StageName = "score-profile"
)

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

	var resp scoringResponse
	err := h.genai.CompleteStructured(ctx,
		prompts.ScoringSystem,
		prompts.ScoringUser(input.Profile, input.Scholarships),
		prompts.ScoringSchema,
		&resp,
	)
	if err != nil {
		return nil, apperrors.NewProfileScoringFailedError(err)
	}

	academic := academicComponent(input.Profile)
	extracurricular := h.extracurricularComponent(&resp)
	total := round1(academic + extracurricular)

	score := &models.ProfileScore{
		TotalScore:            total,
		AcademicComponent:     round1(academic),
		ExtracurricComponent:  round1(extracurricular),
		Rating:                ratingFor(total),
		Strengths:             resp.Strengths,
		Weaknesses:            resp.Weaknesses,
		ImprovementActions:    resp.ImprovementActions,
		TestScoreGaps:         resp.TestScoreGaps,
		ScholarshipFitByIndex: fitByIndex(resp.ScholarshipFit, len(input.Scholarships)),
	}

	h.logger.Info("profile scored", map[string]interface{}{
		"totalScore": score.TotalScore,
		"rating":     score.Rating,
	})

	return &Output{Score: score}, nil
}

// academicComponent is fully deterministic: a GPA bucket plus the best
// test-score band. Max 45.
func academicComponent(profile *models.StudentProfile) float64 {
	var score float64

	switch {
	case profile.GPA >= 3.7:
		score += 30
	case profile.GPA >= 3.3:
		score += 20
	case profile.GPA > 0:
		score += 10
	}

	score += bestTestBand(profile.TestScores)
	return score
}

// bestTestBand returns the highest band any reported test qualifies for.
func bestTestBand(scores models.TestScores) float64 {
	var best float64

	band := func(v float64) {
		if v > best {
			best = v
		}
	}

	switch {
	case scores.IELTS >= 7.0:
		band(15)
	case scores.IELTS >= 6.5:
		band(10)
	case scores.IELTS >= 6.0:
		band(5)
	}
	switch {
	case scores.TOEFL >= 100:
		band(15)
	case scores.TOEFL >= 90:
		band(10)
	case scores.TOEFL >= 80:
		band(5)
	}
	switch {
	case scores.SAT >= 1400:
		band(15)
	case scores.SAT >= 1300:
		band(10)
	case scores.SAT >= 1200:
		band(5)
	}

	return best
}

func (h *Handler) extracurricularComponent(resp *scoringResponse) float64 {
	ec := resp.Extracurricular
	return clamp100(ec.ActivityDiversity)*h.config.DiversityWeight +
		clamp100(ec.Leadership)*h.config.LeadershipWeight +
		clamp100(ec.CommunityImpact)*h.config.CommunityWeight
}

func ratingFor(total float64) string {
	switch {
	case total >= 80:
		return "Outstanding"
	case total >= 65:
		return "Strong"
	case total >= 50:
		return "Competitive"
	case total >= 35:
		return "Developing"
	default:
		return "Needs Significant Improvement"
	}
}

// fitByIndex converts the LLM's string-keyed fit map to indexes, dropping
// keys that are not valid candidate positions.
func fitByIndex(fit map[string]float64, count int) map[int]float64 {
	if len(fit) == 0 {
		return nil
	}
	out := make(map[int]float64, len(fit))
	for k, v := range fit {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= count {
			continue
		}
		out[i] = clamp100(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
