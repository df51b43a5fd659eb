// internal/chat/http_test.go
package chat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/observability"
	"scholarship-advisor/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeRunner) {
	runner := &fakeRunner{stages: []string{
		"analyze-intent", "find-scholarships", "score-profile",
		"estimate-finances", "synthesize-advice",
	}}
	service := NewService(runner, session.NewMemoryStore(time.Hour), &fakeEmail{},
		observability.NewNoop(), logger.NewTestLogger(t))

	srv := httptest.NewServer(NewRouter(service, logger.NewTestLogger(t)))
	t.Cleanup(srv.Close)
	return srv, runner
}

func postTurn(t *testing.T, url string, req TurnRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestChatEndpoint_StreamsBlocksAsNDJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postTurn(t, srv.URL, TurnRequest{SessionID: "s1", Message: "masters in Canada"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var blocks []Block
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var b Block
		require.NoError(t, json.Unmarshal([]byte(line), &b))
		blocks = append(blocks, b)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, blocks, 7)
	assert.Equal(t, BlockProgress, blocks[0].Type)
	assert.Equal(t, BlockReport, blocks[5].Type)
	assert.Equal(t, BlockMessage, blocks[6].Type)
	for _, b := range blocks {
		assert.Equal(t, "s1", b.SessionID)
	}
}

func TestChatEndpoint_RejectsNonPost(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChatEndpoint_RejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postTurn(t, srv.URL, TurnRequest{SessionID: "s1"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpoint_RejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthzEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatEndpoint_StoreFailureStillStreamsAnErrorBlock(t *testing.T) {
	// Headers go out before the turn runs; a dead store must not leave the
	// client with an empty 200 stream.
	runner := &fakeRunner{}
	service := NewService(runner, &failingStore{err: errors.New("redis: connection refused")},
		&fakeEmail{}, observability.NewNoop(), logger.NewTestLogger(t))
	srv := httptest.NewServer(NewRouter(service, logger.NewTestLogger(t)))
	t.Cleanup(srv.Close)

	resp := postTurn(t, srv.URL, TurnRequest{SessionID: "s-down", Message: "hello"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(string(body)))

	var b Block
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(body), &b))
	assert.Equal(t, BlockError, b.Type)
	assert.Contains(t, b.Content, "I lost track of our conversation")
	assert.Equal(t, "s-down", b.SessionID)
}
