// Package pipeline runs the five advisory stages in fixed order over one
// consultation context.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/pipeline/stages/analyzeintent"
	"scholarship-advisor/internal/pipeline/stages/estimatefinances"
	"scholarship-advisor/internal/pipeline/stages/findscholarships"
	"scholarship-advisor/internal/pipeline/stages/scoreprofile"
	"scholarship-advisor/internal/pipeline/stages/synthesizeadvice"
)

// ErrSlotPopulated means a stage tried to write a context field another run
// already filled. Stage outputs are merge-once.
var ErrSlotPopulated = errors.New("consultation slot already populated")

// Progress is invoked before each stage starts, so callers can stream
// per-stage updates to the user while the turn runs.
type Progress func(stage string)

type IntentAnalyzer interface {
	Execute(ctx context.Context, input *analyzeintent.Input) (*analyzeintent.Output, error)
}

type ScholarshipFinder interface {
	Execute(ctx context.Context, input *findscholarships.Input) (*findscholarships.Output, error)
}

type ProfileScorer interface {
	Execute(ctx context.Context, input *scoreprofile.Input) (*scoreprofile.Output, error)
}

type FinanceEstimator interface {
	Execute(ctx context.Context, input *estimatefinances.Input) (*estimatefinances.Output, error)
}

type AdviceSynthesizer interface {
	Execute(ctx context.Context, input *synthesizeadvice.Input) (*synthesizeadvice.Output, error)
}

type Runner struct {
	intent      IntentAnalyzer
	finder      ScholarshipFinder
	scorer      ProfileScorer
	estimator   FinanceEstimator
	synthesizer AdviceSynthesizer
	logger      logger.Logger
}

func NewRunner(
	intent IntentAnalyzer,
	finder ScholarshipFinder,
	scorer ProfileScorer,
	estimator FinanceEstimator,
	synthesizer AdviceSynthesizer,
	log logger.Logger,
) *Runner {
	return &Runner{
		intent:      intent,
		finder:      finder,
		scorer:      scorer,
		estimator:   estimator,
		synthesizer: synthesizer,
		logger:      log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Result reports how the turn ended.
type Result struct {
	// NeedsClarification is set when the extracted profile is too thin to
	// consult on; stages 2-5 were skipped and the context carries the
	// clarification questions to ask.
	NeedsClarification bool
}

// Run executes the stages in order, merging each output into the slot it
// owns on the consultation. Any stage error halts the turn; the caller maps
// it to one user-visible failure message. There is no retry and no rollback:
// fields already merged stay merged.
func (r *Runner) Run(ctx context.Context, consultation *models.ConsultationContext, onProgress Progress) (*Result, error) {
	log := r.logger.With(map[string]interface{}{"turnId": consultation.TurnID})

	// Stage 1: analyze intent.
	if consultation.Profile != nil {
		return nil, fmt.Errorf("%w: profile", ErrSlotPopulated)
	}
	notify(onProgress, analyzeintent.StageName)
	intentOut, err := runStage(ctx, analyzeintent.StageName, log, func(ctx context.Context) (*analyzeintent.Output, error) {
		return r.intent.Execute(ctx, &analyzeintent.Input{
			Request:      consultation.Request,
			DocumentText: consultation.DocumentText,
		})
	})
	if err != nil {
		return nil, err
	}
	consultation.Profile = intentOut.Profile

	if consultation.Profile.NeedsClarification() {
		log.Info("profile incomplete, asking for clarification", map[string]interface{}{
			"completeness": consultation.Profile.CompletenessScore,
		})
		return &Result{NeedsClarification: true}, nil
	}

	// Stage 2: find scholarships.
	if consultation.Scholarships != nil {
		return nil, fmt.Errorf("%w: scholarships", ErrSlotPopulated)
	}
	notify(onProgress, findscholarships.StageName)
	findOut, err := runStage(ctx, findscholarships.StageName, log, func(ctx context.Context) (*findscholarships.Output, error) {
		return r.finder.Execute(ctx, &findscholarships.Input{Profile: consultation.Profile})
	})
	if err != nil {
		return nil, err
	}
	consultation.Scholarships = findOut.Scholarships

	// Stage 3: score profile.
	if consultation.ProfileScore != nil {
		return nil, fmt.Errorf("%w: profileScore", ErrSlotPopulated)
	}
	notify(onProgress, scoreprofile.StageName)
	scoreOut, err := runStage(ctx, scoreprofile.StageName, log, func(ctx context.Context) (*scoreprofile.Output, error) {
		return r.scorer.Execute(ctx, &scoreprofile.Input{
			Profile:      consultation.Profile,
			Scholarships: consultation.Scholarships,
		})
	})
	if err != nil {
		return nil, err
	}
	consultation.ProfileScore = scoreOut.Score

	// Stage 4: estimate finances.
	if consultation.Finances != nil {
		return nil, fmt.Errorf("%w: finances", ErrSlotPopulated)
	}
	notify(onProgress, estimatefinances.StageName)
	financeOut, err := runStage(ctx, estimatefinances.StageName, log, func(ctx context.Context) (*estimatefinances.Output, error) {
		return r.estimator.Execute(ctx, &estimatefinances.Input{
			Profile:      consultation.Profile,
			Scholarships: consultation.Scholarships,
		})
	})
	if err != nil {
		return nil, err
	}
	consultation.Finances = financeOut.Estimate

	// Stage 5: synthesize advice. Runs even when the search came back empty.
	if consultation.Recommendation != nil {
		return nil, fmt.Errorf("%w: recommendation", ErrSlotPopulated)
	}
	notify(onProgress, synthesizeadvice.StageName)
	adviceOut, err := runStage(ctx, synthesizeadvice.StageName, log, func(ctx context.Context) (*synthesizeadvice.Output, error) {
		return r.synthesizer.Execute(ctx, &synthesizeadvice.Input{Consultation: consultation})
	})
	if err != nil {
		return nil, err
	}
	consultation.Recommendation = adviceOut.Recommendation

	return &Result{}, nil
}

func notify(onProgress Progress, stage string) {
	if onProgress != nil {
		onProgress(stage)
	}
}

// runStage wraps one stage call with duration and outcome metrics.
func runStage[O any](ctx context.Context, stage string, log logger.Logger, fn func(context.Context) (*O, error)) (*O, error) {
	start := time.Now()
	out, err := fn(ctx)
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StagesFailed.WithLabelValues(stage, string(apperrors.CodeOf(err))).Inc()
		log.Error("stage failed", map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.StagesCompleted.WithLabelValues(stage).Inc()
	return out, nil
}
