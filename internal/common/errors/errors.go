// Package errors provides standardized error handling for the advisory pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Stage and provider errors
const (
	ErrCodeIntentAnalysisFailed    ErrorCode = "INTENT_ANALYSIS_FAILED"
	ErrCodeScholarshipSearchFailed ErrorCode = "SCHOLARSHIP_SEARCH_FAILED"
	ErrCodeProfileScoringFailed    ErrorCode = "PROFILE_SCORING_FAILED"
	ErrCodeFinanceEstimationFailed ErrorCode = "FINANCE_ESTIMATION_FAILED"
	ErrCodeAdviceSynthesisFailed   ErrorCode = "ADVICE_SYNTHESIS_FAILED"

	ErrCodeMalformedResponse    ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeCurrencyLookupFailed ErrorCode = "CURRENCY_LOOKUP_FAILED"
	ErrCodeEmailSendFailed      ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is/As see through the wrapper.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the ErrorCode from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewIntentAnalysisFailedError creates a retryable intent analysis error.
func NewIntentAnalysisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentAnalysisFailed,
		Message:   "Intent analysis provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewScholarshipSearchFailedError creates a non-retryable search error.
// Search failures halt the consultation rather than degrade it.
func NewScholarshipSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScholarshipSearchFailed,
		Message:   "Scholarship search provider error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProfileScoringFailedError creates a retryable scoring error.
func NewProfileScoringFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileScoringFailed,
		Message:   "Profile scoring error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewFinanceEstimationFailedError creates a retryable finance estimation error.
func NewFinanceEstimationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFinanceEstimationFailed,
		Message:   "Financial estimation error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAdviceSynthesisFailedError creates a retryable synthesis error.
func NewAdviceSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdviceSynthesisFailed,
		Message:   "Advice synthesis provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMalformedResponseError creates a non-retryable structured-output error.
func NewMalformedResponseError(origin string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Provider returned malformed structured output",
		Details:   fmt.Sprintf("origin: %s, error: %s", origin, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCurrencyLookupFailedError creates a retryable exchange rate error.
func NewCurrencyLookupFailedError(pair string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCurrencyLookupFailed,
		Message:   "Exchange rate lookup failed",
		Details:   fmt.Sprintf("pair: %s, error: %s", pair, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEmailSendFailedError creates a retryable email delivery error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Report email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSessionStoreFailedError creates a retryable session persistence error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. User-Facing Messages
// ==========================

// userMessages maps error codes to the single sentence shown to the student.
// Internal detail never leaks into chat output.
var userMessages = map[ErrorCode]string{
	ErrCodeIntentAnalysisFailed:    "I had trouble understanding your request. Could you rephrase it?",
	ErrCodeScholarshipSearchFailed: "I couldn't search for scholarships right now. Please try again in a moment.",
	ErrCodeProfileScoringFailed:    "I couldn't evaluate your profile right now. Please try again in a moment.",
	ErrCodeFinanceEstimationFailed: "I couldn't estimate costs right now. Please try again in a moment.",
	ErrCodeAdviceSynthesisFailed:   "I couldn't put together your recommendation right now. Please try again in a moment.",
	ErrCodeMalformedResponse:       "Something went wrong while preparing your results. Please try again.",
	ErrCodeCurrencyLookupFailed:    "I couldn't fetch current exchange rates. Cost figures may be shown in the study currency only.",
	ErrCodeEmailSendFailed:         "I couldn't send the report email. Please check the address and try again.",
	ErrCodeSessionStoreFailed:      "I lost track of our conversation. Please start again.",
}

// UserMessage returns the chat-safe message for err.
func UserMessage(err error) string {
	if msg, ok := userMessages[CodeOf(err)]; ok {
		return msg
	}
	return "Something unexpected went wrong. Please try again."
}
