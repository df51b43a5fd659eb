// internal/clients/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/common/validation"

	httpx "scholarship-advisor/internal/common/http"
)

var ErrCompletionFailed = errors.New("COMPLETION_FAILED")

// Config holds the chat-completions endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to a chat-completions style LLM endpoint.
type Client struct {
	config *Config
	client *httpx.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: httpx.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"client": "genai",
		}),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user prompt pair and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := completionRequest{
		Model: c.config.Model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrCompletionFailed, resp.StatusCode, snippet)
	}
	metrics.ProviderRequests.WithLabelValues("genai", "ok").Inc()

	var apiResponse completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", apperrors.NewMalformedResponseError("completion-decode", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", apperrors.NewMalformedResponseError("completion", errors.New("empty choices"))
	}

	return apiResponse.Choices[0].Message.Content, nil
}

// CompleteStructured runs Complete with a schema instruction appended to the
// system prompt, extracts the JSON object from the completion, validates it
// against schemaJSON, and unmarshals it into out.
func (c *Client) CompleteStructured(ctx context.Context, system, user, schemaJSON string, out interface{}) error {
	system = system + "\n\nYour entire response must be a single JSON object conforming to this JSON Schema:\n" + schemaJSON

	raw, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}

	doc, err := extractJSON(raw)
	if err != nil {
		return apperrors.NewMalformedResponseError("json-extract", err)
	}

	if err := validation.ValidateJSON(schemaJSON, doc); err != nil {
		return apperrors.NewMalformedResponseError("schema-validate", err)
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return apperrors.NewMalformedResponseError("unmarshal", err)
	}

	c.logger.Debug("structured completion parsed", map[string]interface{}{
		"bytes": len(doc),
	})

	return nil
}

// extractJSON pulls the outermost JSON object out of a completion that may be
// wrapped in prose or a markdown fence.
func extractJSON(raw string) ([]byte, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in completion")
	}
	return []byte(raw[start : end+1]), nil
}
