package scoring

import (
	"context"

	"github.com/shopspring/decimal"
)

// CollectionForecastInput asks for the expected collections of one month.
type CollectionForecastInput struct {
	ForecastMonth string            `json:"forecast_month"` // YYYY-MM
	Tenants       []TenantRiskInput `json:"tenants"`

	// HistoricalCollectionRate is a 0-100 percentage; nil means DefaultCollectionRate.
	HistoricalCollectionRate *float64 `json:"historical_collection_rate,omitempty"`
	SeasonalAdjustment       bool     `json:"seasonal_adjustment"`
}

// TenantForecast is one tenant's expected payment for the forecast month.
type TenantForecast struct {
	RenterID              string       `json:"renter_id"`
	RenterName            string       `json:"renter_name"`
	RentAmount            float64      `json:"rent_amount"`
	RiskScore             float64      `json:"risk_score"`
	RiskCategory          RiskCategory `json:"risk_category"`
	CollectionProbability float64      `json:"collection_probability"` // percent
	ExpectedAmount        float64      `json:"expected_amount"`
	AtRisk                bool         `json:"at_risk"`
}

// AtRiskTenant lists a tenant in the high or critical band.
type AtRiskTenant struct {
	RenterID     string       `json:"renter_id"`
	RenterName   string       `json:"renter_name"`
	PropertyID   string       `json:"property_id"`
	RiskScore    float64      `json:"risk_score"`
	RiskCategory RiskCategory `json:"risk_category"`
	RentAmount   float64      `json:"rent_amount"`
}

// MonthForecast is the aggregate expectation for a single month.
type MonthForecast struct {
	Month                    string  `json:"month"`
	TotalRentDue             float64 `json:"total_rent_due"`
	ExpectedCollectionAmount float64 `json:"expected_collection_amount"`
	ExpectedCollectionRate   float64 `json:"expected_collection_rate"`
	ExpectedShortfall        float64 `json:"expected_shortfall"`
	SeasonalMultiplier       float64 `json:"seasonal_multiplier"`
}

// CollectionForecastResult is the forecast for the requested month plus a
// rolling view of the two months after it.
type CollectionForecastResult struct {
	ForecastMonth            string           `json:"forecast_month"`
	TenantCount              int              `json:"tenant_count"`
	TotalRentDue             float64          `json:"total_rent_due"`
	ExpectedCollectionAmount float64          `json:"expected_collection_amount"`
	ExpectedCollectionRate   float64          `json:"expected_collection_rate"`
	ExpectedShortfall        float64          `json:"expected_shortfall"`
	HistoricalCollectionRate float64          `json:"historical_collection_rate"`
	SeasonalMultiplier       float64          `json:"seasonal_multiplier"`
	AtRiskCount              int              `json:"at_risk_count"`
	AtRiskTenants            []AtRiskTenant   `json:"at_risk_tenants"`
	Tenants                  []TenantForecast `json:"tenants"`
	RollingForecast          []MonthForecast  `json:"rolling_forecast"`
}

const rollingMonths = 3

func collectionRate(rate *float64) float64 {
	if rate == nil {
		return DefaultCollectionRate
	}
	return *rate
}

// CollectionProbability is the 0-1 chance a tenant with the given score pays
// in full. The base rate is scaled by the tenant's score so that a 0 score
// keeps 60% of it.
func CollectionProbability(riskScore, historicalRate, seasonal float64) float64 {
	return Clamp(historicalRate/100*(0.6+0.4*riskScore/100)*seasonal, 0, 1)
}

// CollectionForecast scores every tenant and forecasts collections for the
// requested month and the two following it.
func (e *Engine) CollectionForecast(ctx context.Context, in CollectionForecastInput) (CollectionForecastResult, error) {
	year, month, err := ParseMonth("forecast_month", in.ForecastMonth)
	if err != nil {
		return CollectionForecastResult{}, err
	}
	if len(in.Tenants) == 0 {
		return CollectionForecastResult{}, InvalidField("tenants", "must not be empty")
	}
	if err := requirePercent("historical_collection_rate", in.HistoricalCollectionRate); err != nil {
		return CollectionForecastResult{}, err
	}

	risks, err := e.scoreTenants(ctx, in.Tenants)
	if err != nil {
		return CollectionForecastResult{}, err
	}
	return forecastMonth(year, month, risks, collectionRate(in.HistoricalCollectionRate), in.SeasonalAdjustment), nil
}

func seasonalFor(month int, enabled bool) float64 {
	if !enabled {
		return 1
	}
	return CollectionMultiplier(month)
}

func forecastMonth(year, month int, risks []TenantRiskResult, rate float64, seasonal bool) CollectionForecastResult {
	mult := seasonalFor(month, seasonal)
	tenants := make([]TenantForecast, len(risks))
	atRisk := []AtRiskTenant{}
	for i, r := range risks {
		p := CollectionProbability(r.RiskScore, rate, mult)
		tenants[i] = TenantForecast{
			RenterID:              r.RenterID,
			RenterName:            r.RenterName,
			RentAmount:            r.RentAmount,
			RiskScore:             r.RiskScore,
			RiskCategory:          r.RiskCategory,
			CollectionProbability: Round1(p * 100),
			ExpectedAmount:        money(decimal.NewFromFloat(r.RentAmount).Mul(decimal.NewFromFloat(p))),
			AtRisk:                r.RiskCategory.AtRisk(),
		}
		if r.RiskCategory.AtRisk() {
			atRisk = append(atRisk, AtRiskTenant{
				RenterID:     r.RenterID,
				RenterName:   r.RenterName,
				PropertyID:   r.PropertyID,
				RiskScore:    r.RiskScore,
				RiskCategory: r.RiskCategory,
				RentAmount:   r.RentAmount,
			})
		}
	}

	head := monthTotals(formatMonth(year, month), risks, rate, mult)
	rolling := make([]MonthForecast, 0, rollingMonths)
	rolling = append(rolling, head)
	for n := 1; n < rollingMonths; n++ {
		y, m := addMonths(year, month, n)
		rolling = append(rolling, monthTotals(formatMonth(y, m), risks, rate, seasonalFor(m, seasonal)))
	}

	return CollectionForecastResult{
		ForecastMonth:            head.Month,
		TenantCount:              len(risks),
		TotalRentDue:             head.TotalRentDue,
		ExpectedCollectionAmount: head.ExpectedCollectionAmount,
		ExpectedCollectionRate:   head.ExpectedCollectionRate,
		ExpectedShortfall:        head.ExpectedShortfall,
		HistoricalCollectionRate: rate,
		SeasonalMultiplier:       mult,
		AtRiskCount:              len(atRisk),
		AtRiskTenants:            atRisk,
		Tenants:                  tenants,
		RollingForecast:          rolling,
	}
}

// monthTotals sums rent due and expected collections in decimal so the
// shortfall is exact to the cent.
func monthTotals(label string, risks []TenantRiskResult, rate, mult float64) MonthForecast {
	due := decimal.Zero
	expected := decimal.Zero
	for _, r := range risks {
		rent := decimal.NewFromFloat(r.RentAmount)
		due = due.Add(rent)
		expected = expected.Add(rent.Mul(decimal.NewFromFloat(CollectionProbability(r.RiskScore, rate, mult))))
	}
	due = due.Round(2)
	expected = expected.Round(2)

	var pct float64
	if due.IsPositive() {
		pct, _ = expected.Div(due).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	}
	return MonthForecast{
		Month:                    label,
		TotalRentDue:             money(due),
		ExpectedCollectionAmount: money(expected),
		ExpectedCollectionRate:   pct,
		ExpectedShortfall:        money(due.Sub(expected)),
		SeasonalMultiplier:       mult,
	}
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
