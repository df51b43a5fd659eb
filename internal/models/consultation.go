// internal/models/consultation.go
package models

import "time"

// ConsultationContext is the record accumulated over one consultation turn.
// It is created once per turn and mutated additively: each pipeline stage
// fills exactly one of the slots below and never touches the others.
type ConsultationContext struct {
	TurnID    string    `json:"turnId"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`

	// Original user input.
	Request      string `json:"request"`
	DocumentText string `json:"documentText,omitempty"`

	// Stage 1: analyze-intent
	Profile *StudentProfile `json:"profile,omitempty"`

	// Stage 2: find-scholarships
	Scholarships []Scholarship `json:"scholarships,omitempty"`

	// Stage 3: score-profile
	ProfileScore *ProfileScore `json:"profileScore,omitempty"`

	// Stage 4: estimate-finances
	Finances *FinancialEstimate `json:"finances,omitempty"`

	// Stage 5: synthesize-advice
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// StudentProfile holds the structured fields extracted from the free-text request.
type StudentProfile struct {
	TargetCountry          string     `json:"targetCountry"`
	FieldOfStudy           string     `json:"fieldOfStudy"`
	DegreeLevel            string     `json:"degreeLevel"`
	BudgetRange            string     `json:"budgetRange,omitempty"`
	GPA                    float64    `json:"gpa,omitempty"`
	TestScores             TestScores `json:"testScores"`
	Summary                string     `json:"summary,omitempty"`
	CompletenessScore      int        `json:"completenessScore"`
	MissingInfo            []string   `json:"missingInfo,omitempty"`
	ClarificationQuestions []string   `json:"clarificationQuestions,omitempty"`
}

type TestScores struct {
	IELTS float64 `json:"ielts,omitempty"`
	TOEFL float64 `json:"toefl,omitempty"`
	SAT   float64 `json:"sat,omitempty"`
}

// NeedsClarification reports whether the profile is too incomplete to run the
// remaining stages. Incomplete input is asked back, not failed.
func (p *StudentProfile) NeedsClarification() bool {
	return p.CompletenessScore < 70
}

// Scholarship is one candidate produced by the search stage.
type Scholarship struct {
	Name         string                  `json:"name"`
	Organization string                  `json:"organization,omitempty"`
	Value        string                  `json:"value"`
	Eligibility  string                  `json:"eligibility,omitempty"`
	Requirements ScholarshipRequirements `json:"requirements"`
	Deadline     string                  `json:"deadline,omitempty"`
	SourceURL    string                  `json:"sourceUrl,omitempty"`
	MatchScore   float64                 `json:"matchScore"`
	// DiscoveryOrder is the position in which the candidate came back from
	// the search provider; it breaks ranking ties deterministically.
	DiscoveryOrder int `json:"discoveryOrder"`
}

type ScholarshipRequirements struct {
	GPA      string `json:"gpa,omitempty"`
	Language string `json:"language,omitempty"`
	Other    string `json:"other,omitempty"`
}

// ProfileScore is the outcome of the profile-scoring stage.
type ProfileScore struct {
	TotalScore            float64           `json:"totalScore"`
	AcademicComponent     float64           `json:"academicComponent"`
	ExtracurricComponent  float64           `json:"extracurricularComponent"`
	Rating                string            `json:"rating"`
	Strengths             []string          `json:"strengths,omitempty"`
	Weaknesses            []string          `json:"weaknesses,omitempty"`
	ScholarshipFitByIndex map[int]float64   `json:"scholarshipFitByIndex,omitempty"`
	ImprovementActions    []string          `json:"improvementActions,omitempty"`
	TestScoreGaps         map[string]string `json:"testScoreGaps,omitempty"`
}

// FinancialEstimate is the outcome of the finance stage. All converted fields
// are in HomeCurrency; the raw estimate is in StudyCurrency.
type FinancialEstimate struct {
	StudyCurrency   string  `json:"studyCurrency"`
	HomeCurrency    string  `json:"homeCurrency"`
	ExchangeRate    float64 `json:"exchangeRate"`
	ProgramYears    int     `json:"programYears"`
	TuitionPerYear  float64 `json:"tuitionPerYear"`
	LivingPerYear   float64 `json:"livingPerYear"`
	OtherPerYear    float64 `json:"otherPerYear"`
	OneTimeCosts    float64 `json:"oneTimeCosts"`
	TotalProgram    float64 `json:"totalProgramCost"`
	BestSavings     float64 `json:"bestScholarshipSavings"`
	BestScholarship string  `json:"bestScholarship,omitempty"`
	NetCost         float64 `json:"netCostAfterScholarships"`
	SavingsPercent  float64 `json:"savingsPercent"`
}

// Recommendation is the synthesized result shown to the user.
type Recommendation struct {
	Summary        string   `json:"summary"`
	TopPicks       []string `json:"topPicks,omitempty"`
	ActionPlan     []string `json:"actionPlan,omitempty"`
	SuccessOutlook string   `json:"successOutlook,omitempty"`
}
