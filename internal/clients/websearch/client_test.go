// internal/clients/websearch/client_test.go
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scholarship-advisor/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost:8080",
		APIKey:       "test-key",
		Engine:       "google",
		MaxResults:   10,
		MinRelevance: 0.5,
		Timeout:      5 * time.Second,
	}
}

func searchBody(items ...map[string]string) string {
	body := map[string]interface{}{"organic_results": items}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "scholarships canada computer science", q.Get("q"))

		w.Write([]byte(searchBody(
			map[string]string{"title": "Vanier Scholarship", "link": "https://vanier.gc.ca", "snippet": "Doctoral scholarship in Canada"},
			map[string]string{"title": "UBC Awards", "link": "https://ubc.ca/awards", "snippet": "International student awards"},
		)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	results, err := client.Search(context.Background(), "scholarships canada computer science")

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	// "scholarship" in the title boosts Vanier above UBC
	assert.Equal(t, "Vanier Scholarship", results[0].Title)
}

func TestClient_Search_DedupesByTitleAndLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody(
			map[string]string{"title": "Chevening Scholarship", "link": "https://chevening.org", "snippet": "UK scholarship"},
			map[string]string{"title": "Chevening Scholarship", "link": "https://chevening.org/apply", "snippet": "duplicate title"},
			map[string]string{"title": "Another page", "link": "https://chevening.org", "snippet": "duplicate link"},
		)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	results, err := client.Search(context.Background(), "uk scholarships")

	assert.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestClient_Search_ZeroResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	results, err := client.Search(context.Background(), "nothing")

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	client := NewClient(config, logger.NewTestLogger(t))

	results, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchFailed))
	assert.Nil(t, results)
}

func TestClient_Search_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond
	client := NewClient(config, logger.NewTestLogger(t))

	_, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchTimeout))
}

func TestClient_Search_CapsResults(t *testing.T) {
	var items []map[string]string
	for i := 0; i < 25; i++ {
		items = append(items, map[string]string{
			"title":   "Scholarship " + string(rune('A'+i)),
			"link":    "https://example.org/" + string(rune('a'+i)),
			"snippet": "scholarship details",
		})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody(items...)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.BaseURL = server.URL
	config.MaxResults = 10
	client := NewClient(config, logger.NewTestLogger(t))

	results, err := client.Search(context.Background(), "query")

	assert.NoError(t, err)
	assert.Len(t, results, 10)
}
