// internal/pipeline/stages/findscholarships/handler.go
package findscholarships

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"scholarship-advisor/internal/clients/websearch"
	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/prompts"
)

const (
	StageName = "find-scholarships"
)

// prestigiousNames attract a ranking boost: well-known programs are worth
// surfacing even when the raw match score is middling.
var prestigiousNames = []string{
	"fulbright", "chevening", "rhodes", "gates", "erasmus",
	"daad", "vanier", "commonwealth", "schwarzman", "marshall",
}

// Completer is the slice of the LLM client this stage needs.
type Completer interface {
	CompleteStructured(ctx context.Context, system, user, schemaJSON string, out interface{}) error
}

// Searcher is the slice of the web-search client this stage needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

type Handler struct {
	config   *Config
	searcher Searcher
	genai    Completer
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, genai Completer, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
		genai:    genai,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	query := h.buildQuery(input.Profile)

	results, err := h.searcher.Search(ctx, query)
	if err != nil {
		// A failed search call is terminal for the turn.
		return nil, apperrors.NewScholarshipSearchFailedError(err)
	}

	if len(results) == 0 {
		h.logger.Warn("search returned no results", map[string]interface{}{
			"query": query,
		})
		return &Output{Scholarships: []models.Scholarship{}, Query: query}, nil
	}

	var resp scholarshipResponse
	err = h.genai.CompleteStructured(ctx,
		prompts.ScholarshipSystem,
		prompts.ScholarshipUser(input.Profile, formatResults(results)),
		prompts.ScholarshipSchema,
		&resp,
	)
	if err != nil {
		return nil, apperrors.NewScholarshipSearchFailedError(err)
	}

	scholarships := make([]models.Scholarship, 0, len(resp.Scholarships))
	for i, s := range resp.Scholarships {
		scholarships = append(scholarships, models.Scholarship{
			Name:         s.Name,
			Organization: s.Organization,
			Value:        s.Value,
			Eligibility:  s.Eligibility,
			Requirements: models.ScholarshipRequirements{
				GPA:      s.Requirements.GPA,
				Language: s.Requirements.Language,
				Other:    s.Requirements.Other,
			},
			Deadline:       s.Deadline,
			SourceURL:      s.SourceURL,
			MatchScore:     s.MatchScore,
			DiscoveryOrder: i,
		})
	}

	scholarships = h.rank(scholarships, input.Profile)

	h.logger.Info("scholarships found", map[string]interface{}{
		"query": query,
		"count": len(scholarships),
	})

	return &Output{Scholarships: scholarships, Query: query}, nil
}

// buildQuery composes one enhanced query from the profile.
func (h *Handler) buildQuery(profile *models.StudentProfile) string {
	parts := []string{"scholarships"}
	if profile.FieldOfStudy != "" {
		parts = append(parts, profile.FieldOfStudy)
	}
	if profile.DegreeLevel != "" {
		parts = append(parts, profile.DegreeLevel)
	}
	if profile.TargetCountry != "" {
		parts = append(parts, profile.TargetCountry)
	}
	parts = append(parts, "international students")

	query := strings.Join(parts, " ")
	return regexp.MustCompile(`\s+`).ReplaceAllString(strings.TrimSpace(query), " ")
}

// rank applies deterministic boosts on top of the LLM match score, then a
// stable sort descending with discovery order breaking ties. Top MaxKept kept.
func (h *Handler) rank(scholarships []models.Scholarship, profile *models.StudentProfile) []models.Scholarship {
	for i := range scholarships {
		s := &scholarships[i]

		switch classifyValue(s.Value) {
		case valueFull:
			s.MatchScore += h.config.FullBoost
		case valuePartial:
			s.MatchScore += h.config.PartBoost
		}

		name := strings.ToLower(s.Name + " " + s.Organization)
		for _, p := range prestigiousNames {
			if strings.Contains(name, p) {
				s.MatchScore += h.config.NameBoost
				break
			}
		}

		if profile.FieldOfStudy != "" {
			text := strings.ToLower(s.Name + " " + s.Eligibility)
			if strings.Contains(text, strings.ToLower(profile.FieldOfStudy)) {
				s.MatchScore += h.config.FieldBoost
			}
		}

		if s.MatchScore > 100 {
			s.MatchScore = 100
		}
	}

	sort.SliceStable(scholarships, func(i, j int) bool {
		if scholarships[i].MatchScore != scholarships[j].MatchScore {
			return scholarships[i].MatchScore > scholarships[j].MatchScore
		}
		return scholarships[i].DiscoveryOrder < scholarships[j].DiscoveryOrder
	})

	if len(scholarships) > h.config.MaxKept {
		scholarships = scholarships[:h.config.MaxKept]
	}
	return scholarships
}

type valueKind int

const (
	valueUnknown valueKind = iota
	valuePartial
	valueFull
)

var percentPattern = regexp.MustCompile(`\d+\s*%`)

// classifyValue distinguishes full rides from partial awards from free text.
func classifyValue(value string) valueKind {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "full"):
		return valueFull
	case percentPattern.MatchString(v), strings.Contains(v, "partial"):
		return valuePartial
	default:
		return valueUnknown
	}
}

func formatResults(results []websearch.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
	}
	return b.String()
}
