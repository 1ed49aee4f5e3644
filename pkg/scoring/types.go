// Package scoring implements the rentscore calculators: pure functions that map
// tenant, property and market records to explainable 0-100 scores, credit
// estimates and collection forecasts.
package scoring

// Factor is a single weighted sub-score backing a calculator result.
type Factor struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`        // sub-score, 0-100
	Weight       float64 `json:"weight"`       // share of the total, weights of one result sum to 1.0
	Contribution float64 `json:"contribution"` // Value * Weight
	Description  string  `json:"description"`
}

// Grade buckets a 0-100 score.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeFair      Grade = "Fair"
	GradePoor      Grade = "Poor"
	GradeVeryPoor  Grade = "VeryPoor"
)

// RiskCategory classifies a tenant risk score.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskModerate RiskCategory = "moderate"
	RiskHigh     RiskCategory = "high"
	RiskCritical RiskCategory = "critical"
)

// AtRisk reports whether tenants in this category count toward at-risk totals.
func (c RiskCategory) AtRisk() bool {
	return c == RiskHigh || c == RiskCritical
}

// CreditTier buckets a 300-850 credit score.
type CreditTier string

const (
	TierExcellent CreditTier = "Excellent"
	TierGood      CreditTier = "Good"
	TierFair      CreditTier = "Fair"
	TierPoor      CreditTier = "Poor"
	TierVeryPoor  CreditTier = "VeryPoor"
)

// RiskDistribution counts tenants per risk category.
type RiskDistribution struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

func (d *RiskDistribution) add(c RiskCategory) {
	switch c {
	case RiskLow:
		d.Low++
	case RiskModerate:
		d.Moderate++
	case RiskHigh:
		d.High++
	default:
		d.Critical++
	}
}

// Total returns the number of tenants counted.
func (d RiskDistribution) Total() int {
	return d.Low + d.Moderate + d.High + d.Critical
}
