// internal/clients/websearch/client.go
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"

	httpx "scholarship-advisor/internal/common/http"
)

var (
	ErrSearchFailed  = errors.New("SEARCH_FAILED")
	ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")
)

// Config holds the search endpoint settings.
type Config struct {
	BaseURL      string
	APIKey       string
	Engine       string
	MaxResults   int
	MinRelevance float64
	Timeout      time.Duration
}

// Result is one organic search hit.
type Result struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

// Client queries the web-search provider and scores results client-side.
type Client struct {
	config *Config
	client *httpx.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.MaxResults == 0 {
		config.MaxResults = 10
	}
	return &Client{
		config: config,
		client: httpx.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"client": "websearch",
		}),
	}
}

// Search runs one query and returns deduplicated results sorted by relevance.
// Zero results is not an error.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	searchURL := c.buildSearchURL(query)

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("websearch", "error").Inc()
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("websearch", "error").Inc()
		return nil, fmt.Errorf("%w: search API returned %d", ErrSearchFailed, resp.StatusCode)
	}
	metrics.ProviderRequests.WithLabelValues("websearch", "ok").Inc()

	var apiResponse struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSearchFailed, err)
	}

	results := c.processResults(apiResponse.OrganicResults)

	c.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(results),
	})

	return results, nil
}

func (c *Client) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(c.config.BaseURL + "/search")
	params := url.Values{}
	params.Add("engine", c.config.Engine)
	params.Add("api_key", c.config.APIKey)
	params.Add("q", query)
	params.Add("num", fmt.Sprintf("%d", c.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (c *Client) processResults(items []struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}) []Result {
	seenLink := make(map[string]bool)
	seenTitle := make(map[string]bool)
	var results []Result

	for _, item := range items {
		// Dedupe by link and by title
		if seenLink[item.Link] || seenTitle[strings.ToLower(item.Title)] {
			continue
		}
		seenLink[item.Link] = true
		seenTitle[strings.ToLower(item.Title)] = true

		relevance := 1.0
		link := strings.ToLower(item.Link)
		text := strings.ToLower(item.Title + " " + item.Snippet)
		if strings.Contains(link, ".gov") || strings.Contains(link, ".edu") {
			relevance += 0.2
		}
		if strings.Contains(text, "scholarship") || strings.Contains(text, "fellowship") {
			relevance += 0.2
		}
		if strings.Contains(text, "official") {
			relevance += 0.1
		}

		if relevance >= c.config.MinRelevance {
			results = append(results, Result{
				Title:     item.Title,
				Link:      item.Link,
				Snippet:   item.Snippet,
				Relevance: relevance,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	if len(results) > c.config.MaxResults {
		results = results[:c.config.MaxResults]
	}

	return results
}
