// internal/clients/currency/client.go
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/common/validation"

	httpx "scholarship-advisor/internal/common/http"
)

var ErrInvalidCode = errors.New("INVALID_CURRENCY_CODE")

// Config holds the exchange-rate endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client fetches pair conversion rates.
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
			"client": "currency",
		}),
	}
}

// Rate returns the conversion rate from one currency to another.
// Identical codes short-circuit to 1.0 without a provider call.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	if !validation.ValidateCurrencyCode(from) || !validation.ValidateCurrencyCode(to) {
		return 0, fmt.Errorf("%w: %s/%s", ErrInvalidCode, from, to)
	}
	if from == to {
		return 1.0, nil
	}

	pair := from + "/" + to
	url := fmt.Sprintf("%s/%s/pair/%s/%s", c.config.BaseURL, c.config.APIKey, from, to)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, apperrors.NewCurrencyLookupFailedError(pair, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("currency", "error").Inc()
		return 0, apperrors.NewCurrencyLookupFailedError(pair, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("currency", "error").Inc()
		return 0, apperrors.NewCurrencyLookupFailedError(pair, fmt.Errorf("status %d", resp.StatusCode))
	}

	var apiResponse struct {
		Result         string  `json:"result"`
		ConversionRate float64 `json:"conversion_rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.ProviderRequests.WithLabelValues("currency", "error").Inc()
		return 0, apperrors.NewCurrencyLookupFailedError(pair, err)
	}

	if apiResponse.Result != "success" || apiResponse.ConversionRate <= 0 {
		metrics.ProviderRequests.WithLabelValues("currency", "error").Inc()
		return 0, apperrors.NewCurrencyLookupFailedError(pair, fmt.Errorf("provider result %q", apiResponse.Result))
	}
	metrics.ProviderRequests.WithLabelValues("currency", "ok").Inc()

	c.logger.Debug("rate fetched", map[string]interface{}{
		"pair": pair,
		"rate": apiResponse.ConversionRate,
	})

	return apiResponse.ConversionRate, nil
}

// Convert converts an amount, rounding to 2 decimal places.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rate, err := c.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return Round2(amount * rate), nil
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
