package surface

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/pkg/scoring"
)

const scale100 = "/100"

// Build converts a calculator result into a Report. result may be a value
// or a pointer to one of the scoring result types.
func Build(calculator string, result any) (*Report, error) {
	r := &Report{Calculator: calculator, Raw: result, Scale: scale100}

	switch res := deref(result).(type) {
	case scoring.TenantRiskResult:
		tenantRisk(r, res)
	case []scoring.TenantRiskResult:
		tenantBatch(r, res)
	case scoring.CreditworthinessResult:
		credit(r, res)
	case scoring.CollectionForecastResult:
		forecast(r, res)
	case scoring.PortfolioRiskResult:
		portfolioRisk(r, res)
	case scoring.PortfolioSummary:
		portfolioSummary(r, res)
	case scoring.DesirabilityResult:
		r.Title = "Desirability"
		graded(r, res.Score, res.Grade, res.Factors)
		r.section("Highlights", res.Highlights...)
		r.section("Summary", res.Summary)
	case scoring.NegotiationResult:
		r.Title = "Negotiation power"
		graded(r, res.Score, res.Grade, res.Factors)
		r.detail("Power level", "%s", res.PowerLevel)
		r.section("Talking points", res.TalkingPoints...)
		r.section("Script", res.Script)
	case scoring.RenterScoreResult:
		r.Title = "Renter score: " + res.RenterID
		graded(r, res.Score, res.Grade, res.Factors)
		r.section("Improvement tips", res.ImprovementTips...)
	case scoring.DealScoreResult:
		r.Title = "Deal score"
		graded(r, res.Score, res.Grade, res.Factors)
		r.detail("Verdict", "%s", res.Verdict)
		r.detail("Rent vs market", "%s", vsMarket(res.RentVsMarketPct))
	case scoring.LeverageScoreResult:
		r.Title = "Leverage score"
		graded(r, res.Score, res.Grade, res.Factors)
		r.detail("Leverage level", "%s", res.LeverageLevel)
		r.detail("Best months", "%s", strings.Join(res.BestMonths, ", "))
		r.section("Recommendations", res.Recommendations...)
	case scoring.RenewalStrategyResult:
		renewal(r, res)
	default:
		return nil, eris.Errorf("cannot render result of type %T", result)
	}
	return r, nil
}

func deref(v any) any {
	switch p := v.(type) {
	case *scoring.TenantRiskResult:
		return *p
	case *[]scoring.TenantRiskResult:
		return *p
	case *scoring.CreditworthinessResult:
		return *p
	case *scoring.CollectionForecastResult:
		return *p
	case *scoring.PortfolioRiskResult:
		return *p
	case *scoring.PortfolioSummary:
		return *p
	case *scoring.DesirabilityResult:
		return *p
	case *scoring.NegotiationResult:
		return *p
	case *scoring.RenterScoreResult:
		return *p
	case *scoring.DealScoreResult:
		return *p
	case *scoring.LeverageScoreResult:
		return *p
	case *scoring.RenewalStrategyResult:
		return *p
	}
	return v
}

func graded(r *Report, score float64, g scoring.Grade, factors []scoring.Factor) {
	r.Score = score
	r.Label = string(g)
	r.Tone = gradeTone(g)
	r.Factors = factors
}

func gradeTone(g scoring.Grade) Tone {
	switch g {
	case scoring.GradeExcellent, scoring.GradeGood:
		return ToneGood
	case scoring.GradeFair:
		return ToneWarn
	case scoring.GradePoor, scoring.GradeVeryPoor:
		return ToneBad
	default:
		return ToneNeutral
	}
}

func riskTone(c scoring.RiskCategory) Tone {
	switch c {
	case scoring.RiskLow:
		return ToneGood
	case scoring.RiskModerate:
		return ToneWarn
	case scoring.RiskHigh, scoring.RiskCritical:
		return ToneBad
	default:
		return ToneNeutral
	}
}

func tierTone(t scoring.CreditTier) Tone {
	switch t {
	case scoring.TierExcellent, scoring.TierGood:
		return ToneGood
	case scoring.TierFair:
		return ToneWarn
	default:
		return ToneBad
	}
}

func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-$" + b.String() + frac
	}
	return "$" + b.String() + frac
}

// vsMarket renders a rent/market multiple as a signed percentage.
func vsMarket(ratio float64) string {
	pct := (ratio - 1) * 100
	switch {
	case pct > 0.05:
		return fmt.Sprintf("%.1f%% above market", pct)
	case pct < -0.05:
		return fmt.Sprintf("%.1f%% below market", -pct)
	default:
		return "at market"
	}
}

func distribution(d scoring.RiskDistribution) string {
	return fmt.Sprintf("%d low / %d moderate / %d high / %d critical", d.Low, d.Moderate, d.High, d.Critical)
}

func tenantRisk(r *Report, res scoring.TenantRiskResult) {
	r.Title = "Tenant risk: " + res.RenterID
	if res.RenterName != "" {
		r.Title += " (" + res.RenterName + ")"
	}
	r.Score = res.RiskScore
	r.Label = string(res.RiskCategory)
	r.Tone = riskTone(res.RiskCategory)
	r.Factors = res.Factors
	r.detail("Rent", "%s", money(res.RentAmount))
	if res.PropertyAddress != "" {
		r.detail("Property", "%s", res.PropertyAddress)
	}
	r.section("Recommendation", res.Recommendation)
}

func tenantBatch(r *Report, res []scoring.TenantRiskResult) {
	r.Title = fmt.Sprintf("Tenant risk: %d tenants", len(res))
	var dist scoring.RiskDistribution
	var sum float64
	lines := make([]string, 0, len(res))
	for _, t := range res {
		sum += t.RiskScore
		switch t.RiskCategory {
		case scoring.RiskLow:
			dist.Low++
		case scoring.RiskModerate:
			dist.Moderate++
		case scoring.RiskHigh:
			dist.High++
		case scoring.RiskCritical:
			dist.Critical++
		}
		lines = append(lines, fmt.Sprintf("%s: %.1f (%s)", t.RenterID, t.RiskScore, t.RiskCategory))
	}
	if len(res) > 0 {
		r.Score = scoring.Round1(sum / float64(len(res)))
		r.Label = string(scoring.RiskCategoryFromScore(r.Score))
		r.Tone = riskTone(scoring.RiskCategory(r.Label))
	}
	r.detail("Distribution", "%s", distribution(dist))
	r.section("Tenants", lines...)
}

func credit(r *Report, res scoring.CreditworthinessResult) {
	r.Title = "Creditworthiness: " + res.RenterID
	r.Score = float64(res.CreditScore)
	r.Whole = true
	r.Scale = fmt.Sprintf(" (%d-%d)", scoring.MinCreditScore, scoring.MaxCreditScore)
	r.Label = string(res.CreditTier)
	r.Tone = tierTone(res.CreditTier)
	source := "bureau"
	if res.IsProxy {
		source = "rental-history proxy"
	}
	r.detail("Source", "%s", source)
	r.detail("Confidence", "%s", res.Confidence)
	r.detail("Deposit multiplier", "%.2fx", res.DepositMultiplier)
	adj := make([]string, 0, len(res.Adjustments))
	for _, a := range res.Adjustments {
		adj = append(adj, fmt.Sprintf("%+.0f %s: %s", a.Points, a.Name, a.Description))
	}
	r.section("Adjustments", adj...)
	r.section("Explanation", res.Explanation)
}

func forecast(r *Report, res scoring.CollectionForecastResult) {
	r.Title = "Collection forecast: " + res.ForecastMonth
	r.Score = res.ExpectedCollectionRate
	r.Scale = "%"
	r.Label = fmt.Sprintf("%d at risk", res.AtRiskCount)
	r.Tone = ToneGood
	if res.AtRiskCount > 0 {
		r.Tone = ToneWarn
	}
	r.detail("Tenants", "%d", res.TenantCount)
	r.detail("Rent due", "%s", money(res.TotalRentDue))
	r.detail("Expected", "%s", money(res.ExpectedCollectionAmount))
	r.detail("Shortfall", "%s", money(res.ExpectedShortfall))
	r.detail("Seasonal multiplier", "%.2f", res.SeasonalMultiplier)

	atRisk := make([]string, 0, len(res.AtRiskTenants))
	for _, t := range res.AtRiskTenants {
		atRisk = append(atRisk, fmt.Sprintf("%s: %.1f (%s), rent %s", t.RenterID, t.RiskScore, t.RiskCategory, money(t.RentAmount)))
	}
	r.section("At-risk tenants", atRisk...)
	r.section("Rolling forecast", rolling(res.RollingForecast)...)
}

func rolling(months []scoring.MonthForecast) []string {
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, fmt.Sprintf("%s: %s of %s (%.1f%%)",
			m.Month, money(m.ExpectedCollectionAmount), money(m.TotalRentDue), m.ExpectedCollectionRate))
	}
	return out
}

func portfolioRisk(r *Report, res scoring.PortfolioRiskResult) {
	r.Title = "Portfolio risk"
	r.Score = res.OverallRiskScore
	r.Label = string(res.RiskCategory)
	r.Tone = riskTone(res.RiskCategory)
	summaryDetails(r, res.Summary)

	months := make([]string, 0, len(res.MonthlyForecasts))
	for _, f := range res.MonthlyForecasts {
		months = append(months, fmt.Sprintf("%s: %s expected, %s shortfall (%.1f%%)",
			f.ForecastMonth, money(f.ExpectedCollectionAmount), money(f.ExpectedShortfall), f.ExpectedCollectionRate))
	}
	r.section("Monthly forecasts", months...)
}

func portfolioSummary(r *Report, res scoring.PortfolioSummary) {
	r.Title = "Portfolio summary"
	r.Score = res.AverageRiskScore
	r.Label = string(scoring.RiskCategoryFromScore(res.AverageRiskScore))
	r.Tone = riskTone(scoring.RiskCategory(r.Label))
	summaryDetails(r, res)
}

func summaryDetails(r *Report, s scoring.PortfolioSummary) {
	r.detail("Tenants", "%d", s.TenantCount)
	r.detail("Monthly rent", "%s (avg %s)", money(s.TotalMonthlyRent), money(s.AverageRent))
	r.detail("Distribution", "%s", distribution(s.RiskDistribution))
	r.detail("At risk", "%d tenants, %s rent", s.AtRiskCount, money(s.AtRiskRent))
	r.detail("On-time rate", "%.1f%%", s.OnTimePaymentRate)
	r.detail("Verified income", "%d", s.VerifiedIncomeCount)
	r.detail("Month-to-month", "%d", s.MonthToMonthCount)
}

func renewal(r *Report, res scoring.RenewalStrategyResult) {
	r.Title = "Renewal strategy"
	graded(r, res.Score, res.Grade, res.Factors)
	r.detail("Action", "%s", res.RecommendedAction)
	r.detail("Rent vs market", "%s", vsMarket(res.RentVsMarketPct))
	r.detail("Max discount", "%.1f%%", res.MaxDiscountPct)
	r.detail("Target rent", "%s", money(res.TargetRent))
	r.section("Talking points", res.TalkingPoints...)
	r.section("Opening request", res.OpeningRequest)
	r.section("Alternative ask", res.AlternativeAsk)
	r.section("Timing", res.TimingRecommendation)
}
