// internal/pipeline/stages/estimatefinances/handler.go
package estimatefinances

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"scholarship-advisor/internal/clients/currency"
	apperrors "scholarship-advisor/internal/common/errors"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/models"
	"scholarship-advisor/internal/prompts"
)

const (
	StageName = "estimate-finances"
)

type Completer interface {
	CompleteStructured(ctx context.Context, system, user, schemaJSON string, out interface{}) error
}

// Rater is the slice of the currency client this stage needs.
type Rater interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

type Handler struct {
	config *Config
	genai  Completer
	rates  Rater
	logger logger.Logger
}

func NewHandler(config *Config, genai Completer, rates Rater, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		genai:  genai,
		rates:  rates,
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

	var resp costResponse
	err := h.genai.CompleteStructured(ctx,
		prompts.FinanceSystem,
		prompts.FinanceUser(input.Profile),
		prompts.FinanceSchema,
		&resp,
	)
	if err != nil {
		return nil, apperrors.NewFinanceEstimationFailedError(err)
	}

	years := resp.ProgramYears
	if years < 1 {
		years = 1
	}
	if years > 8 {
		years = 8
	}

	homeCurrency := strings.ToUpper(strings.TrimSpace(input.HomeCurrency))
	if homeCurrency == "" {
		homeCurrency = h.config.DefaultHomeCurrency
	}

	rate, err := h.rates.Rate(ctx, resp.Currency, homeCurrency)
	if err != nil {
		return nil, apperrors.NewFinanceEstimationFailedError(err)
	}

	// Totals in the study currency, then converted once.
	total := (resp.TuitionPerYear+resp.LivingPerYear+resp.OtherPerYear)*float64(years) + resp.OneTimeCosts

	bestSavings, bestName := bestScholarshipSavings(input.Scholarships, resp.TuitionPerYear, years)
	if bestSavings > total {
		bestSavings = total
	}

	estimate := &models.FinancialEstimate{
		StudyCurrency:   resp.Currency,
		HomeCurrency:    homeCurrency,
		ExchangeRate:    rate,
		ProgramYears:    years,
		TuitionPerYear:  currency.Round2(resp.TuitionPerYear * rate),
		LivingPerYear:   currency.Round2(resp.LivingPerYear * rate),
		OtherPerYear:    currency.Round2(resp.OtherPerYear * rate),
		OneTimeCosts:    currency.Round2(resp.OneTimeCosts * rate),
		TotalProgram:    currency.Round2(total * rate),
		BestSavings:     currency.Round2(bestSavings * rate),
		BestScholarship: bestName,
		NetCost:         currency.Round2((total - bestSavings) * rate),
	}
	if total > 0 {
		estimate.SavingsPercent = currency.Round2(bestSavings / total * 100)
	}

	h.logger.Info("finances estimated", map[string]interface{}{
		"studyCurrency": estimate.StudyCurrency,
		"homeCurrency":  estimate.HomeCurrency,
		"totalProgram":  estimate.TotalProgram,
		"netCost":       estimate.NetCost,
	})

	return &Output{Estimate: estimate}, nil
}

// bestScholarshipSavings parses each candidate's value text into a savings
// amount in the study currency and returns the largest.
func bestScholarshipSavings(scholarships []models.Scholarship, tuitionPerYear float64, years int) (float64, string) {
	var best float64
	var name string
	for _, s := range scholarships {
		savings := parseValue(s.Value, tuitionPerYear, years)
		if savings > best {
			best = savings
			name = s.Name
		}
	}
	return best, name
}

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	amountPattern  = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)`)
	annualPattern  = regexp.MustCompile(`(?i)per\s+year|per\s+annum|annual|/\s*year|yearly`)
)

// parseValue turns free-text award descriptions into a study-currency amount.
// "full" means the whole tuition bill; a percentage is a tuition fraction;
// a plain amount counts once, or per year when the text says so.
func parseValue(value string, tuitionPerYear float64, years int) float64 {
	v := strings.ToLower(value)
	tuitionTotal := tuitionPerYear * float64(years)

	if strings.Contains(v, "full") {
		return tuitionTotal
	}

	if m := percentPattern.FindStringSubmatch(v); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil || pct <= 0 || pct > 100 {
			return 0
		}
		return tuitionTotal * pct / 100
	}

	if m := amountPattern.FindStringSubmatch(v); m != nil {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && amount > 0 {
			if annualPattern.MatchString(v) {
				return amount * float64(years)
			}
			return amount
		}
	}

	return 0
}
