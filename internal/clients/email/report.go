// internal/clients/email/report.go
package email

import (
	"fmt"
	"html/template"
	"strings"

	"scholarship-advisor/internal/models"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: auto;">
  <h1 style="color: #1a5276;">Scholarship Consultation Report</h1>

  {{if .Recommendation}}
  <h2>Summary</h2>
  <p>{{.Recommendation.Summary}}</p>

  {{if .Recommendation.TopPicks}}
  <h2>Top Picks</h2>
  <ol>
    {{range .Recommendation.TopPicks}}<li>{{.}}</li>{{end}}
  </ol>
  {{end}}

  {{if .Recommendation.ActionPlan}}
  <h2>Action Plan</h2>
  <ul>
    {{range .Recommendation.ActionPlan}}<li>{{.}}</li>{{end}}
  </ul>
  {{end}}

  {{if .Recommendation.SuccessOutlook}}
  <h2>Outlook</h2>
  <p>{{.Recommendation.SuccessOutlook}}</p>
  {{end}}
  {{end}}

  {{if .Scholarships}}
  <h2>Scholarships ({{len .Scholarships}})</h2>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr><th>Name</th><th>Value</th><th>Deadline</th><th>Match</th></tr>
    {{range .Scholarships}}
    <tr><td>{{.Name}}</td><td>{{.Value}}</td><td>{{.Deadline}}</td><td>{{printf "%.0f" .MatchScore}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .Finances}}
  <h2>Estimated Costs ({{.Finances.HomeCurrency}})</h2>
  <p>
    Total program cost: {{printf "%.0f" .Finances.TotalProgram}}<br>
    Best scholarship savings: {{printf "%.0f" .Finances.BestSavings}}<br>
    Net cost: {{printf "%.0f" .Finances.NetCost}}
  </p>
  {{end}}

  <p style="color: #888; font-size: 12px;">Generated by your scholarship advisor.</p>
</body>
</html>`))

func renderHTMLReport(c *models.ConsultationContext) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderTextReport(c *models.ConsultationContext) string {
	var b strings.Builder
	b.WriteString("SCHOLARSHIP CONSULTATION REPORT\n\n")

	if c.Recommendation != nil {
		b.WriteString(c.Recommendation.Summary)
		b.WriteString("\n")
		if len(c.Recommendation.TopPicks) > 0 {
			b.WriteString("\nTop picks:\n")
			for i, pick := range c.Recommendation.TopPicks {
				fmt.Fprintf(&b, "%d. %s\n", i+1, pick)
			}
		}
		if len(c.Recommendation.ActionPlan) > 0 {
			b.WriteString("\nAction plan:\n")
			for _, step := range c.Recommendation.ActionPlan {
				fmt.Fprintf(&b, "- %s\n", step)
			}
		}
		if c.Recommendation.SuccessOutlook != "" {
			fmt.Fprintf(&b, "\nOutlook: %s\n", c.Recommendation.SuccessOutlook)
		}
	}

	if len(c.Scholarships) > 0 {
		fmt.Fprintf(&b, "\nScholarships (%d):\n", len(c.Scholarships))
		for _, s := range c.Scholarships {
			fmt.Fprintf(&b, "- %s (%s), deadline %s, match %.0f\n", s.Name, s.Value, s.Deadline, s.MatchScore)
		}
	}

	if c.Finances != nil {
		fmt.Fprintf(&b, "\nEstimated costs (%s): total %.0f, best savings %.0f, net %.0f\n",
			c.Finances.HomeCurrency, c.Finances.TotalProgram, c.Finances.BestSavings, c.Finances.NetCost)
	}

	return b.String()
}
