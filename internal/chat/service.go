// Package chat drives one consultation turn per user message and streams
// progressively rendered blocks back to the caller.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholarship-advisor/internal/clients/email"
	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/common/observability"
	"scholarship-advisor/internal/common/validation"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/pipeline"
	"scholarship-advisor/internal/session"
)

// ConsultationRunner runs the five-stage pipeline over one turn.
type ConsultationRunner interface {
	Run(ctx context.Context, consultation *models.ConsultationContext, onProgress pipeline.Progress) (*pipeline.Result, error)
}

// ReportSender delivers the final report by email.
type ReportSender interface {
	SendReport(ctx context.Context, to string, consultation *models.ConsultationContext) error
}

// Emit receives each block as soon as it is ready.
type Emit func(Block)

type Service struct {
	runner ConsultationRunner
	store  session.Store
	email  ReportSender
	obs    *observability.Observability
	logger logger.Logger
}

func NewService(runner ConsultationRunner, store session.Store, email ReportSender, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		runner: runner,
		store:  store,
		email:  email,
		obs:    obs,
		logger: log.With(map[string]interface{}{"component": "chat"}),
	}
}

// HandleTurn processes one user message against the session's current step.
// Pipeline failures are turn-scoped: they become an error block, never a
// transport error.
func (s *Service) HandleTurn(ctx context.Context, req *TurnRequest, emit Emit) error {
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	sess, err := session.GetOrCreate(ctx, s.store, sessionID)
	if err != nil {
		storeErr := apperrors.NewSessionStoreFailedError(err)
		emit(Block{Type: BlockError, Content: apperrors.UserMessage(storeErr), SessionID: sessionID})
		return storeErr
	}
	sess.AppendHistory("user", req.Message)

	// A finished session starts over on the next message.
	if sess.CurrentStep == models.StepDone {
		sess.CurrentStep = models.StepInitial
		sess.LastTurn = nil
	}

	step := sess.CurrentStep
	switch step {
	case models.StepInitial, models.StepClarification:
		s.runConsultation(ctx, sess, req, emit)
	case models.StepEmailCollection:
		s.collectEmail(ctx, sess, req.Message, emit)
	default:
		s.logger.Warn("unknown session step, resetting", map[string]interface{}{
			"sessionId": sess.ID,
			"step":      sess.CurrentStep,
		})
		sess.CurrentStep = models.StepInitial
		s.runConsultation(ctx, sess, req, emit)
	}

	metrics.TurnsTotal.WithLabelValues(step).Inc()
	s.obs.RecordTurnProcessed(ctx, sess.CurrentStep)
	s.obs.RecordTurnDuration(ctx, time.Since(start), sess.CurrentStep)

	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("session save failed", map[string]interface{}{
			"sessionId": sess.ID,
			"error":     err.Error(),
		})
		storeErr := apperrors.NewSessionStoreFailedError(err)
		emit(Block{Type: BlockError, Content: apperrors.UserMessage(storeErr), Step: sess.CurrentStep, SessionID: sess.ID})
		return storeErr
	}
	return nil
}

func (s *Service) runConsultation(ctx context.Context, sess *models.Session, req *TurnRequest, emit Emit) {
	consultation := &models.ConsultationContext{
		TurnID:       uuid.New().String(),
		SessionID:    sess.ID,
		CreatedAt:    time.Now().UTC(),
		Request:      s.buildRequest(sess, req.Message),
		DocumentText: req.DocumentText,
	}

	result, err := s.runner.Run(ctx, consultation, func(stage string) {
		label := stageLabels[stage]
		if label == "" {
			label = stage
		}
		emit(Block{Type: BlockProgress, Stage: stage, Content: label, Step: sess.CurrentStep, SessionID: sess.ID})
	})
	if err != nil {
		s.logger.Error("consultation failed", map[string]interface{}{
			"sessionId": sess.ID,
			"turnId":    consultation.TurnID,
			"errorCode": string(apperrors.CodeOf(err)),
		})
		s.reply(sess, emit, Block{Type: BlockError, Content: apperrors.UserMessage(err)})
		return
	}

	sess.Profile = consultation.Profile

	if result.NeedsClarification {
		sess.CurrentStep = models.StepClarification
		sess.LastTurn = consultation
		s.reply(sess, emit, Block{Type: BlockMessage, Content: clarificationText(consultation.Profile)})
		return
	}

	sess.CurrentStep = models.StepEmailCollection
	sess.LastTurn = consultation
	s.reply(sess, emit, Block{Type: BlockReport, Content: renderReport(consultation)})
	s.reply(sess, emit, Block{
		Type:    BlockMessage,
		Content: "Would you like this report by email? Reply with your address, or \"skip\".",
	})
}

// buildRequest folds clarification answers back into the original request so
// intent analysis sees the whole picture.
func (s *Service) buildRequest(sess *models.Session, message string) string {
	if sess.CurrentStep == models.StepClarification && sess.LastTurn != nil {
		return sess.LastTurn.Request + "\nAdditional details: " + message
	}
	return message
}

func (s *Service) collectEmail(ctx context.Context, sess *models.Session, message string, emit Emit) {
	answer := strings.TrimSpace(message)

	if strings.EqualFold(answer, "skip") {
		sess.CurrentStep = models.StepDone
		s.reply(sess, emit, Block{Type: BlockMessage, Content: "No problem. Good luck with your applications!"})
		return
	}

	if !validation.ValidateEmail(answer) {
		s.reply(sess, emit, Block{
			Type:    BlockMessage,
			Content: "That doesn't look like an email address. Reply with a valid address, or \"skip\".",
		})
		return
	}

	sess.UserEmail = answer
	sess.CurrentStep = models.StepDone

	if err := s.email.SendReport(ctx, answer, sess.LastTurn); err != nil {
		if errors.Is(err, email.ErrDeliveryDisabled) {
			s.reply(sess, emit, Block{
				Type:    BlockMessage,
				Content: "Email delivery isn't available right now, so I couldn't send it. Your full report is in this chat above.",
			})
			return
		}
		s.logger.Error("report email failed", map[string]interface{}{
			"sessionId": sess.ID,
			"error":     err.Error(),
		})
		s.reply(sess, emit, Block{Type: BlockError, Content: apperrors.UserMessage(apperrors.NewEmailSendFailedError(err))})
		return
	}

	s.reply(sess, emit, Block{Type: BlockMessage, Content: fmt.Sprintf("Sent! Your report is on its way to %s.", answer)})
}

// reply stamps session fields onto the block, emits it, and records the
// advisor side of the exchange in history.
func (s *Service) reply(sess *models.Session, emit Emit, block Block) {
	block.Step = sess.CurrentStep
	block.SessionID = sess.ID
	emit(block)
	if block.Type != BlockProgress {
		sess.AppendHistory("advisor", block.Content)
	}
}

func clarificationText(profile *models.StudentProfile) string {
	var b strings.Builder
	b.WriteString("I need a bit more information before I can advise you:\n")
	for _, q := range profile.ClarificationQuestions {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return b.String()
}

// renderReport flattens the consultation into the chat report block.
func renderReport(c *models.ConsultationContext) string {
	var b strings.Builder

	if c.Recommendation != nil {
		b.WriteString(c.Recommendation.Summary)
		b.WriteString("\n")

		if len(c.Recommendation.TopPicks) > 0 {
			b.WriteString("\nTop picks:\n")
			for i, pick := range c.Recommendation.TopPicks {
				fmt.Fprintf(&b, "%d. %s\n", i+1, pick)
			}
		}
	}

	if len(c.Scholarships) > 0 {
		b.WriteString("\nScholarships found:\n")
		for _, s := range c.Scholarships {
			fmt.Fprintf(&b, "- %s (%s), match %.0f/100\n", s.Name, s.Value, s.MatchScore)
		}
	}

	if c.ProfileScore != nil {
		fmt.Fprintf(&b, "\nProfile score: %.0f/100 (%s)\n", c.ProfileScore.TotalScore, c.ProfileScore.Rating)
	}

	if c.Finances != nil {
		fmt.Fprintf(&b, "\nEstimated total cost: %.2f %s", c.Finances.TotalProgram, c.Finances.HomeCurrency)
		if c.Finances.BestScholarship != "" {
			fmt.Fprintf(&b, "\nWith %s: %.2f %s (saves %.0f%%)",
				c.Finances.BestScholarship, c.Finances.NetCost, c.Finances.HomeCurrency, c.Finances.SavingsPercent)
		}
		b.WriteString("\n")
	}

	if c.Recommendation != nil && len(c.Recommendation.ActionPlan) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, step := range c.Recommendation.ActionPlan {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}

	if c.Recommendation != nil && c.Recommendation.SuccessOutlook != "" {
		b.WriteString("\nOutlook: ")
		b.WriteString(c.Recommendation.SuccessOutlook)
		b.WriteString("\n")
	}

	return b.String()
}
