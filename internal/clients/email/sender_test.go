// internal/clients/email/sender_test.go
package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"

	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
)

// mockSES captures the last SendEmail input.
type mockSES struct {
	lastInput *ses.SendEmailInput
	err       error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func createTestConfig() *Config {
	return &Config{
		Enabled:   true,
		AWSRegion: "us-east-1",
		FromEmail: "advisor@example.org",
	}
}

func sampleConsultation() *models.ConsultationContext {
	return &models.ConsultationContext{
		Request: "scholarships in Canada",
		Scholarships: []models.Scholarship{
			{Name: "Vanier CGS", Value: "full tuition", Deadline: "2026-11-01", MatchScore: 88},
			{Name: "UBC IMES", Value: "50% tuition", Deadline: "2026-12-15", MatchScore: 72},
		},
		Finances: &models.FinancialEstimate{
			HomeCurrency: "INR",
			TotalProgram: 9000000,
			BestSavings:  4500000,
			NetCost:      4500000,
		},
		Recommendation: &models.Recommendation{
			Summary:        "Strong fit for Canadian graduate scholarships.",
			TopPicks:       []string{"Vanier CGS: best value", "UBC IMES: realistic backup"},
			ActionPlan:     []string{"Retake IELTS", "Request references by October"},
			SuccessOutlook: "Good chances with an improved IELTS score.",
		},
	}
}

func TestSender_SendReport_Success(t *testing.T) {
	mock := &mockSES{}
	sender := NewSenderWithClient(createTestConfig(), mock, logger.NewTestLogger(t))

	err := sender.SendReport(context.Background(), "student@example.com", sampleConsultation())

	assert.NoError(t, err)
	assert.NotNil(t, mock.lastInput)
	assert.Equal(t, "advisor@example.org", *mock.lastInput.Source)
	assert.Equal(t, []string{"student@example.com"}, mock.lastInput.Destination.ToAddresses)

	html := *mock.lastInput.Message.Body.Html.Data
	text := *mock.lastInput.Message.Body.Text.Data
	assert.Contains(t, html, "Vanier CGS")
	assert.Contains(t, html, "Strong fit for Canadian graduate scholarships.")
	assert.Contains(t, text, "Vanier CGS")
	assert.Contains(t, text, "Action plan:")
}

func TestSender_SendReport_InvalidAddress(t *testing.T) {
	mock := &mockSES{}
	sender := NewSenderWithClient(createTestConfig(), mock, logger.NewTestLogger(t))

	err := sender.SendReport(context.Background(), "not-an-email", sampleConsultation())

	assert.True(t, errors.Is(err, ErrInvalidAddress))
	assert.Nil(t, mock.lastInput, "nothing should be sent to SES")
}

func TestSender_SendReport_SESFailure(t *testing.T) {
	mock := &mockSES{err: errors.New("throttled")}
	sender := NewSenderWithClient(createTestConfig(), mock, logger.NewTestLogger(t))

	err := sender.SendReport(context.Background(), "student@example.com", sampleConsultation())

	assert.True(t, errors.Is(err, ErrSendFailed))
}

func TestSender_SendReport_Disabled(t *testing.T) {
	config := createTestConfig()
	config.Enabled = false
	mock := &mockSES{}
	sender := NewSenderWithClient(config, mock, logger.NewTestLogger(t))

	err := sender.SendReport(context.Background(), "student@example.com", sampleConsultation())

	assert.True(t, errors.Is(err, ErrDeliveryDisabled), "dropped reports must be distinguishable from sent ones")
	assert.Nil(t, mock.lastInput)
}

func TestRenderTextReport_EmptyConsultation(t *testing.T) {
	text := renderTextReport(&models.ConsultationContext{})
	assert.Contains(t, text, "SCHOLARSHIP CONSULTATION REPORT")
}

func TestRenderHTMLReport_EscapesContent(t *testing.T) {
	c := &models.ConsultationContext{
		Recommendation: &models.Recommendation{
			Summary: `<script>alert("x")</script>`,
		},
	}
	html, err := renderHTMLReport(c)
	assert.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
