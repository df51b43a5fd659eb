// internal/clients/email/sender.go
package email

import (
	"context"
	"errors"
	"fmt"

	commonaws "scholarship-advisor/internal/common/aws"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/common/validation"
	"scholarship-advisor/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	ErrSendFailed     = errors.New("EMAIL_SEND_FAILED")
	ErrInvalidAddress = errors.New("INVALID_EMAIL_ADDRESS")

	// ErrDeliveryDisabled signals that delivery is switched off in config.
	// Callers must not confirm a send to the user when they see it.
	ErrDeliveryDisabled = errors.New("EMAIL_DELIVERY_DISABLED")
)

// SESService is the slice of the SES client the sender needs, kept as an
// interface for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	Enabled   bool
	AWSRegion string
	FromEmail string
}

// Sender delivers consultation reports over SES.
type Sender struct {
	config    *Config
	sesClient SESService
	logger    logger.Logger
}

func NewSender(ctx context.Context, config *Config, log logger.Logger) (*Sender, error) {
	sesClient, err := commonaws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	return NewSenderWithClient(config, sesClient, log), nil
}

// NewSenderWithClient wires an explicit SES client, used by tests.
func NewSenderWithClient(config *Config, client SESService, log logger.Logger) *Sender {
	return &Sender{
		config:    config,
		sesClient: client,
		logger: log.With(map[string]interface{}{
			"client": "email",
		}),
	}
}

// SendReport renders the consultation into HTML and plain text and sends it.
func (s *Sender) SendReport(ctx context.Context, to string, consultation *models.ConsultationContext) error {
	if !validation.ValidateEmail(to) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, to)
	}
	if !s.config.Enabled {
		s.logger.Warn("email sending disabled, dropping report", map[string]interface{}{
			"to": to,
		})
		return ErrDeliveryDisabled
	}

	subject := "Your Scholarship Consultation Report"
	htmlBody, err := renderHTMLReport(consultation)
	if err != nil {
		return fmt.Errorf("%w: render: %v", ErrSendFailed, err)
	}
	textBody := renderTextReport(consultation)

	_, err = s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody)},
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("email", "error").Inc()
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	metrics.ProviderRequests.WithLabelValues("email", "ok").Inc()

	s.logger.Info("report email sent", map[string]interface{}{
		"to": to,
	})

	return nil
}
