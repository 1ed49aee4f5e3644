package scoring

import (
	"context"

	"github.com/shopspring/decimal"
)

// PortfolioRiskInput asks for a portfolio dashboard across one or more months.
type PortfolioRiskInput struct {
	ForecastMonths           []string          `json:"forecast_months"`
	Tenants                  []TenantRiskInput `json:"tenants"`
	HistoricalCollectionRate *float64          `json:"historical_collection_rate,omitempty"`
	SeasonalAdjustment       bool              `json:"seasonal_adjustment"`
}

// PortfolioRiskResult blends current tenant risk with historical collection
// behavior into one 0-100 score.
type PortfolioRiskResult struct {
	OverallRiskScore float64                    `json:"overall_risk_score"`
	RiskCategory     RiskCategory               `json:"risk_category"`
	RiskDistribution RiskDistribution           `json:"risk_distribution"`
	MonthlyForecasts []CollectionForecastResult `json:"monthly_forecasts"`
	TenantRisks      []TenantRiskResult         `json:"tenant_risks"`
	Summary          PortfolioSummary           `json:"summary"`
}

// PortfolioSummaryInput is the body of a portfolio summary request.
type PortfolioSummaryInput struct {
	Tenants []TenantRiskInput `json:"tenants"`
}

// PortfolioSummary holds totals, averages and counts over a tenant set.
type PortfolioSummary struct {
	TenantCount         int              `json:"tenant_count"`
	TotalMonthlyRent    float64          `json:"total_monthly_rent"`
	AverageRent         float64          `json:"average_rent"`
	AverageRiskScore    float64          `json:"average_risk_score"`
	RiskDistribution    RiskDistribution `json:"risk_distribution"`
	AtRiskCount         int              `json:"at_risk_count"`
	AtRiskRent          float64          `json:"at_risk_rent"`
	OnTimePaymentRate   float64          `json:"on_time_payment_rate"`
	VerifiedIncomeCount int              `json:"verified_income_count"`
	MonthToMonthCount   int              `json:"month_to_month_count"`
}

// PortfolioRisk scores every tenant once and reuses those scores for each
// requested month.
func (e *Engine) PortfolioRisk(ctx context.Context, in PortfolioRiskInput) (PortfolioRiskResult, error) {
	if len(in.ForecastMonths) == 0 {
		return PortfolioRiskResult{}, InvalidField("forecast_months", "must not be empty")
	}
	type ym struct{ year, month int }
	months := make([]ym, len(in.ForecastMonths))
	for i, s := range in.ForecastMonths {
		y, m, err := ParseMonth("forecast_months", s)
		if err != nil {
			return PortfolioRiskResult{}, indexed("forecast_months", i, err)
		}
		months[i] = ym{y, m}
	}
	if len(in.Tenants) == 0 {
		return PortfolioRiskResult{}, InvalidField("tenants", "must not be empty")
	}
	if err := requirePercent("historical_collection_rate", in.HistoricalCollectionRate); err != nil {
		return PortfolioRiskResult{}, err
	}

	risks, err := e.scoreTenants(ctx, in.Tenants)
	if err != nil {
		return PortfolioRiskResult{}, err
	}

	rate := collectionRate(in.HistoricalCollectionRate)
	forecasts := make([]CollectionForecastResult, len(months))
	for i, m := range months {
		forecasts[i] = forecastMonth(m.year, m.month, risks, rate, in.SeasonalAdjustment)
	}

	summary := Summarize(in.Tenants, risks)
	overall := Round1(clampScore(portfolioTenantWeight*summary.AverageRiskScore + portfolioHistoricalWeight*rate))

	return PortfolioRiskResult{
		OverallRiskScore: overall,
		RiskCategory:     RiskCategoryFromScore(overall),
		RiskDistribution: summary.RiskDistribution,
		MonthlyForecasts: forecasts,
		TenantRisks:      risks,
		Summary:          summary,
	}, nil
}

// PortfolioSummary scores the tenants and reduces them to summary statistics.
func (e *Engine) PortfolioSummary(ctx context.Context, in PortfolioSummaryInput) (PortfolioSummary, error) {
	if len(in.Tenants) == 0 {
		return PortfolioSummary{}, InvalidField("tenants", "must not be empty")
	}
	risks, err := e.scoreTenants(ctx, in.Tenants)
	if err != nil {
		return PortfolioSummary{}, err
	}
	return Summarize(in.Tenants, risks), nil
}

// Summarize reduces tenants and their positional risk results. It does no
// scoring of its own.
func Summarize(tenants []TenantRiskInput, risks []TenantRiskResult) PortfolioSummary {
	s := PortfolioSummary{TenantCount: len(tenants)}
	if len(tenants) == 0 {
		return s
	}

	rent := decimal.Zero
	atRiskRent := decimal.Zero
	var scoreSum float64
	var onTime, payments int
	for i, t := range tenants {
		r := risks[i]
		amount := decimal.NewFromFloat(t.RentAmount)
		rent = rent.Add(amount)
		scoreSum += r.RiskScore
		s.RiskDistribution.add(r.RiskCategory)
		if r.RiskCategory.AtRisk() {
			s.AtRiskCount++
			atRiskRent = atRiskRent.Add(amount)
		}
		onTime += t.OnTimePayments
		payments += t.TotalPayments()
		if t.VerifiedIncome != nil && *t.VerifiedIncome > 0 {
			s.VerifiedIncomeCount++
		}
		if t.IsMonthToMonth {
			s.MonthToMonthCount++
		}
	}

	n := len(tenants)
	s.TotalMonthlyRent = money(rent)
	s.AverageRent = money(rent.Div(decimal.NewFromInt(int64(n))))
	s.AverageRiskScore = Round1(scoreSum / float64(n))
	s.AtRiskRent = money(atRiskRent)
	if payments > 0 {
		s.OnTimePaymentRate = Round1(float64(onTime) / float64(payments) * 100)
	}
	return s
}
