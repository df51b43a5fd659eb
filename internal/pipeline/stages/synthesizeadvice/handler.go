// internal/pipeline/stages/synthesizeadvice/handler.go
package synthesizeadvice

import (
	"context"
	"errors"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/prompts"
)

const (
	StageName = "synthesize-advice"
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

// execute always runs, even with zero scholarship candidates: the prompt
// instructs the model to deliver general funding guidance in that case.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	var resp adviceResponse
	err := h.genai.CompleteStructured(ctx,
		prompts.SynthesisSystem,
		prompts.SynthesisUser(input.Consultation),
		prompts.SynthesisSchema,
		&resp,
	)
	if err != nil {
		return nil, apperrors.NewAdviceSynthesisFailedError(err)
	}

	if resp.Summary == "" {
		return nil, apperrors.NewAdviceSynthesisFailedError(errors.New("empty summary"))
	}

	picks := resp.TopPicks
	if len(picks) > h.config.MaxTopPicks {
		picks = picks[:h.config.MaxTopPicks]
	}

	h.logger.Info("advice synthesized", map[string]interface{}{
		"topPicks":   len(picks),
		"candidates": len(input.Consultation.Scholarships),
	})

	return &Output{Recommendation: &models.Recommendation{
		Summary:        resp.Summary,
		TopPicks:       picks,
		ActionPlan:     resp.ActionPlan,
		SuccessOutlook: resp.SuccessOutlook,
	}}, nil
}
