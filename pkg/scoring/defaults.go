package scoring

// Calculator names, shared by the CLI, the HTTP routes and the dispatcher.
const (
	CalcTenantRisk         = "tenant-risk"
	CalcTenantRiskBatch    = "tenant-risk-batch"
	CalcCreditworthiness   = "creditworthiness"
	CalcCollectionForecast = "collection-forecast"
	CalcPortfolioRisk      = "portfolio-risk"
	CalcPortfolioSummary   = "portfolio-summary"
	CalcDesirability       = "desirability"
	CalcNegotiation        = "negotiation"
	CalcRenterScore        = "renter-score"
	CalcDealScore          = "deal-score"
	CalcLeverageScore      = "leverage-score"
	CalcRenewalStrategy    = "renewal-strategy"
)

// Weights returns a copy of every calculator's factor weights, keyed by
// calculator name.
func Weights() map[string]WeightSet {
	sets := map[string]WeightSet{
		CalcTenantRisk:      tenantRiskWeights,
		CalcDesirability:    desirabilityWeights,
		CalcNegotiation:     negotiationWeights,
		CalcRenterScore:     renterScoreWeights,
		CalcDealScore:       dealScoreWeights,
		CalcLeverageScore:   leverageScoreWeights,
		CalcRenewalStrategy: renewalWeights,
	}
	out := make(map[string]WeightSet, len(sets))
	for name, ws := range sets {
		cp := make(WeightSet, len(ws))
		for k, v := range ws {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}
