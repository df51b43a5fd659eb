// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_ResolvesStructuredErrors(t *testing.T) {
	cause := errors.New("provider unreachable")

	assert.Equal(t, ErrCodeScholarshipSearchFailed, CodeOf(NewScholarshipSearchFailedError(cause)))
	assert.Equal(t, ErrCodeCurrencyLookupFailed, CodeOf(NewCurrencyLookupFailedError("CAD/USD", cause)))
	assert.Equal(t, ErrCodeMalformedResponse, CodeOf(NewMalformedResponseError("complete-structured", cause)))
}

func TestCodeOf_SeesThroughWrapping(t *testing.T) {
	inner := NewIntentAnalysisFailedError(errors.New("timeout"))
	wrapped := fmt.Errorf("turn aborted: %w", inner)

	assert.Equal(t, ErrCodeIntentAnalysisFailed, CodeOf(wrapped))
}

func TestCodeOf_UnknownErrorsCarryNoCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("something else")))
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	se := NewEmailSendFailedError(cause)

	assert.True(t, errors.Is(se, cause))

	var target *StandardError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", se), &target))
	assert.Equal(t, ErrCodeEmailSendFailed, target.Code)
	assert.Equal(t, cause.Error(), target.Details)
}

func TestUserMessage_KnownCode(t *testing.T) {
	err := NewSessionStoreFailedError(errors.New("redis down"))

	msg := UserMessage(err)

	assert.Equal(t, "I lost track of our conversation. Please start again.", msg)
	assert.NotContains(t, msg, "redis")
}

func TestUserMessage_FallbackForUncodedErrors(t *testing.T) {
	assert.Equal(t,
		"Something unexpected went wrong. Please try again.",
		UserMessage(errors.New("oops")))
}
