// internal/pipeline/stages/findscholarships/handler_test.go
package findscholarships

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-advisor/internal/clients/websearch"
	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
)

type fakeSearcher struct {
	results   []websearch.Result
	err       error
	lastQuery string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	f.lastQuery = query
	return f.results, f.err
}

type fakeCompleter struct {
	response string
	err      error
	lastUser string
	calls    int
}

func (f *fakeCompleter) CompleteStructured(ctx context.Context, system, user, schemaJSON string, out interface{}) error {
	f.calls++
	f.lastUser = user
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func testProfile() *models.StudentProfile {
	return &models.StudentProfile{
		TargetCountry:     "Canada",
		FieldOfStudy:      "AI/ML",
		DegreeLevel:       "masters",
		GPA:               3.4,
		TestScores:        models.TestScores{IELTS: 6.5},
		CompletenessScore: 85,
	}
}

func searchResults(n int) []websearch.Result {
	results := make([]websearch.Result, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, websearch.Result{
			Title:   fmt.Sprintf("Scholarship listing %d", i),
			Link:    fmt.Sprintf("https://example.org/%d", i),
			Snippet: "funding for international students",
		})
	}
	return results
}

func TestHandler_Execute_StructuresAndRanks(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults(3)}
	completer := &fakeCompleter{response: `{
		"scholarships": [
			{"name": "UBC Graduate Award", "organization": "UBC", "value": "CAD 10,000 per year", "matchScore": 70},
			{"name": "Vanier Canada Graduate Scholarship", "organization": "Government of Canada", "value": "full funding", "matchScore": 60},
			{"name": "AI/ML Research Bursary", "organization": "Mitacs", "value": "50% tuition", "matchScore": 60}
		]
	}`}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	require.Len(t, output.Scholarships, 3)

	// Vanier: 60 + full 15 + prestigious name 20 = 95.
	assert.Equal(t, "Vanier Canada Graduate Scholarship", output.Scholarships[0].Name)
	assert.Equal(t, 95.0, output.Scholarships[0].MatchScore)
	// Bursary: 60 + partial 10 + field match 10 = 80.
	assert.Equal(t, "AI/ML Research Bursary", output.Scholarships[1].Name)
	assert.Equal(t, 80.0, output.Scholarships[1].MatchScore)
	// UBC award: unboosted 70.
	assert.Equal(t, "UBC Graduate Award", output.Scholarships[2].Name)
	assert.Equal(t, 70.0, output.Scholarships[2].MatchScore)
}

func TestHandler_Execute_QueryBuiltFromProfile(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults(1)}
	completer := &fakeCompleter{response: `{"scholarships": []}`}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	assert.Equal(t, "scholarships AI/ML masters Canada international students", searcher.lastQuery)
}

func TestHandler_Execute_SearchFailureIsTerminal(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("provider unreachable")}
	completer := &fakeCompleter{}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeScholarshipSearchFailed, apperrors.CodeOf(err))
	assert.Zero(t, completer.calls, "no LLM call after a failed search")
}

func TestHandler_Execute_ZeroResultsIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{results: nil}
	completer := &fakeCompleter{}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	assert.Empty(t, output.Scholarships)
	assert.NotEmpty(t, output.Query)
	assert.Zero(t, completer.calls)
}

func TestHandler_Execute_TiesBreakByDiscoveryOrder(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults(3)}
	completer := &fakeCompleter{response: `{
		"scholarships": [
			{"name": "Award A", "value": "stipend", "matchScore": 75},
			{"name": "Award B", "value": "stipend", "matchScore": 75},
			{"name": "Award C", "value": "stipend", "matchScore": 75}
		]
	}`}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	names := []string{output.Scholarships[0].Name, output.Scholarships[1].Name, output.Scholarships[2].Name}
	assert.Equal(t, []string{"Award A", "Award B", "Award C"}, names)
}

func TestHandler_Execute_CapsAtMaxKept(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"scholarships": [`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"name": "Award %d", "value": "stipend", "matchScore": %d}`, i, 90-i)
	}
	b.WriteString(`]}`)

	searcher := &fakeSearcher{results: searchResults(15)}
	completer := &fakeCompleter{response: b.String()}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	assert.Len(t, output.Scholarships, 10)
	assert.Equal(t, "Award 0", output.Scholarships[0].Name)
}

func TestHandler_Execute_ScoreClampedAt100(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults(1)}
	completer := &fakeCompleter{response: `{
		"scholarships": [
			{"name": "Fulbright Foreign Student Program", "value": "full funding", "matchScore": 95}
		]
	}`}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	assert.Equal(t, 100.0, output.Scholarships[0].MatchScore)
}

func TestHandler_Execute_ResultsForwardedToModel(t *testing.T) {
	searcher := &fakeSearcher{results: []websearch.Result{{
		Title:   "Chevening Scholarships",
		Link:    "https://www.chevening.org",
		Snippet: "fully funded UK government scholarships",
	}}}
	completer := &fakeCompleter{response: `{"scholarships": []}`}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	require.NoError(t, err)
	assert.Contains(t, completer.lastUser, "chevening.org")
}

func TestHandler_Execute_MalformedModelOutput(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults(2)}
	completer := &fakeCompleter{err: apperrors.NewMalformedResponseError("schema-validate", errors.New("scholarships is required"))}

	handler := NewHandler(createTestConfig(), searcher, completer, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Profile: testProfile()})

	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeScholarshipSearchFailed, apperrors.CodeOf(err))
}
