// Package prompts holds the stage prompt templates and the JSON schemas the
// structured LLM responses are validated against.
package prompts

import (
	"fmt"
	"strings"

	"scholarship-advisor/internal/models"
)

// --- Stage 1: intent analysis ---

const IntentSystem = `You are an expert study-abroad counselor. Extract a structured student profile from the student's message. Score completeness 0-100 based on how much of the following is present: target country, field of study, degree level, budget, GPA, language test scores. When information is missing, list it and write short clarification questions the counselor should ask next. Respond with JSON only.`

const IntentSchema = `{
	"type": "object",
	"properties": {
		"targetCountry": {"type": "string"},
		"fieldOfStudy": {"type": "string"},
		"degreeLevel": {"type": "string"},
		"budgetRange": {"type": "string"},
		"gpa": {"type": "number"},
		"testScores": {
			"type": "object",
			"properties": {
				"ielts": {"type": "number"},
				"toefl": {"type": "number"},
				"sat": {"type": "number"}
			}
		},
		"summary": {"type": "string"},
		"completenessScore": {"type": "integer", "minimum": 0, "maximum": 100},
		"missingInfo": {"type": "array", "items": {"type": "string"}},
		"clarificationQuestions": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["targetCountry", "fieldOfStudy", "degreeLevel", "completenessScore"]
}`

func IntentUser(request, documentText string) string {
	var b strings.Builder
	b.WriteString("Student message:\n")
	b.WriteString(request)
	if documentText != "" {
		b.WriteString("\n\nAttached document text:\n")
		b.WriteString(documentText)
	}
	return b.String()
}

// --- Stage 2: scholarship structuring ---

const ScholarshipSystem = `You are a scholarship research assistant. Turn raw web search results into structured scholarship records for the given student profile. Only include real scholarships visible in the results, one record per scholarship. Estimate a matchScore 0-100 for how well each fits the profile. Respond with JSON only.`

const ScholarshipSchema = `{
	"type": "object",
	"properties": {
		"scholarships": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"organization": {"type": "string"},
					"value": {"type": "string"},
					"eligibility": {"type": "string"},
					"requirements": {
						"type": "object",
						"properties": {
							"gpa": {"type": "string"},
							"language": {"type": "string"},
							"other": {"type": "string"}
						}
					},
					"deadline": {"type": "string"},
					"sourceUrl": {"type": "string"},
					"matchScore": {"type": "number", "minimum": 0, "maximum": 100}
				},
				"required": ["name", "value", "matchScore"]
			}
		}
	},
	"required": ["scholarships"]
}`

func ScholarshipUser(profile *models.StudentProfile, results string) string {
	return fmt.Sprintf(
		"Student profile:\n%s\n\nWeb search results:\n%s",
		describeProfile(profile), results,
	)
}

// --- Stage 3: profile scoring ---

const ScoringSystem = `You are an admissions evaluator. Compare the student profile against the scholarship requirements. Identify strengths, weaknesses, concrete improvement actions, test score gaps, and a 0-100 fit score per scholarship (keyed by its position in the list, starting at 0). Also rate the extracurricular side of the profile 0-100 on activity diversity, leadership experience, and community impact; when the profile says nothing about activities, rate those 0. Respond with JSON only.`

const ScoringSchema = `{
	"type": "object",
	"properties": {
		"strengths": {"type": "array", "items": {"type": "string"}},
		"weaknesses": {"type": "array", "items": {"type": "string"}},
		"improvementActions": {"type": "array", "items": {"type": "string"}},
		"testScoreGaps": {"type": "object"},
		"scholarshipFit": {"type": "object"},
		"extracurricular": {
			"type": "object",
			"properties": {
				"activityDiversity": {"type": "number", "minimum": 0, "maximum": 100},
				"leadership": {"type": "number", "minimum": 0, "maximum": 100},
				"communityImpact": {"type": "number", "minimum": 0, "maximum": 100}
			}
		}
	},
	"required": ["strengths", "weaknesses"]
}`

func ScoringUser(profile *models.StudentProfile, scholarships []models.Scholarship) string {
	var b strings.Builder
	b.WriteString("Student profile:\n")
	b.WriteString(describeProfile(profile))
	b.WriteString("\n\nScholarships under consideration:\n")
	for i, s := range scholarships {
		fmt.Fprintf(&b, "%d. %s (%s), value: %s; requirements: GPA %s, language %s, other %s\n",
			i, s.Name, s.Organization, s.Value,
			orUnknown(s.Requirements.GPA), orUnknown(s.Requirements.Language), orUnknown(s.Requirements.Other))
	}
	return b.String()
}

// --- Stage 4: cost estimation ---

const FinanceSystem = `You are a study-abroad financial planner. Estimate realistic annual costs for the student's target country and degree level, in that country's local currency. Use typical public figures. Respond with JSON only.`

const FinanceSchema = `{
	"type": "object",
	"properties": {
		"currency": {"type": "string", "pattern": "^[A-Z]{3}$"},
		"programYears": {"type": "integer", "minimum": 1, "maximum": 8},
		"tuitionPerYear": {"type": "number", "minimum": 0},
		"livingPerYear": {"type": "number", "minimum": 0},
		"otherPerYear": {"type": "number", "minimum": 0},
		"oneTimeCosts": {"type": "number", "minimum": 0}
	},
	"required": ["currency", "programYears", "tuitionPerYear", "livingPerYear"]
}`

func FinanceUser(profile *models.StudentProfile) string {
	return fmt.Sprintf(
		"Target country: %s\nDegree level: %s\nField of study: %s\nStated budget: %s",
		profile.TargetCountry, profile.DegreeLevel, profile.FieldOfStudy, orUnknown(profile.BudgetRange),
	)
}

// --- Stage 5: synthesis ---

const SynthesisSystem = `You are a senior study-abroad counselor writing the final consultation report. Produce an executive summary, up to three top scholarship picks with one-line reasons, a concrete action plan, and a short success outlook. If no scholarships were found, say so plainly and give general funding guidance instead. Respond with JSON only.`

const SynthesisSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string", "minLength": 1},
		"topPicks": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
		"actionPlan": {"type": "array", "items": {"type": "string"}},
		"successOutlook": {"type": "string"}
	},
	"required": ["summary"]
}`

func SynthesisUser(ctx *models.ConsultationContext) string {
	var b strings.Builder
	b.WriteString("Student profile:\n")
	b.WriteString(describeProfile(ctx.Profile))

	b.WriteString("\n\nScholarships found:\n")
	if len(ctx.Scholarships) == 0 {
		b.WriteString("none\n")
	}
	for i, s := range ctx.Scholarships {
		fmt.Fprintf(&b, "%d. %s, value %s, match score %.0f\n", i+1, s.Name, s.Value, s.MatchScore)
	}

	if ctx.ProfileScore != nil {
		fmt.Fprintf(&b, "\nProfile evaluation: %.0f/100 (%s)\n", ctx.ProfileScore.TotalScore, ctx.ProfileScore.Rating)
		if len(ctx.ProfileScore.Strengths) > 0 {
			fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(ctx.ProfileScore.Strengths, "; "))
		}
		if len(ctx.ProfileScore.Weaknesses) > 0 {
			fmt.Fprintf(&b, "Weaknesses: %s\n", strings.Join(ctx.ProfileScore.Weaknesses, "; "))
		}
	}

	if ctx.Finances != nil {
		fmt.Fprintf(&b, "\nFinances: total %.0f %s, best scholarship savings %.0f, net cost %.0f (in %s)\n",
			ctx.Finances.TotalProgram, ctx.Finances.HomeCurrency,
			ctx.Finances.BestSavings, ctx.Finances.NetCost, ctx.Finances.HomeCurrency)
	}

	return b.String()
}

func describeProfile(p *models.StudentProfile) string {
	if p == nil {
		return "unknown"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- target country: %s\n", orUnknown(p.TargetCountry))
	fmt.Fprintf(&b, "- field of study: %s\n", orUnknown(p.FieldOfStudy))
	fmt.Fprintf(&b, "- degree level: %s\n", orUnknown(p.DegreeLevel))
	if p.BudgetRange != "" {
		fmt.Fprintf(&b, "- budget: %s\n", p.BudgetRange)
	}
	if p.GPA > 0 {
		fmt.Fprintf(&b, "- GPA: %.2f\n", p.GPA)
	}
	if p.TestScores.IELTS > 0 {
		fmt.Fprintf(&b, "- IELTS: %.1f\n", p.TestScores.IELTS)
	}
	if p.TestScores.TOEFL > 0 {
		fmt.Fprintf(&b, "- TOEFL: %.0f\n", p.TestScores.TOEFL)
	}
	if p.TestScores.SAT > 0 {
		fmt.Fprintf(&b, "- SAT: %.0f\n", p.TestScores.SAT)
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
