package intake

import (
	"context"
	"encoding/json"

	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/pkg/scoring"
)

var (
	rentFields   = []string{"current_rent", "market_rent"}
	tenantFields = []string{"renter_id", "rent_amount"}
)

// defaulter fills absent keys before decoding.
type defaulter func(p payload, d Defaults)

func defaultMonth(p payload, d Defaults) {
	setIfAbsent(p, "month", int(d.now().Month()))
}

func defaultCurrentYear(p payload, d Defaults) {
	setIfAbsent(p, "current_year", d.now().Year())
}

func defaultCollectionRate(p payload, d Defaults) {
	setIfAbsent(p, "historical_collection_rate", d.CollectionRate)
}

func defaultAsOf(p payload, d Defaults) {
	setIfAbsent(p, "as_of", d.now().UnixMilli())
}

// defaultTenantsAsOf stamps every tenant in the tenants array that has no
// as_of of its own.
func defaultTenantsAsOf(p payload, d Defaults) {
	if !p.has("tenants") {
		return
	}
	var tenants []payload
	if err := json.Unmarshal(p["tenants"], &tenants); err != nil {
		return
	}
	for _, t := range tenants {
		if t != nil {
			defaultAsOf(t, d)
		}
	}
	raw, err := json.Marshal(tenants)
	if err != nil {
		return
	}
	p["tenants"] = raw
}

func setIfAbsent(p payload, key string, v any) {
	if p.has(key) {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	p[key] = raw
}

// newCalculator builds a Calculator around a typed engine call.
func newCalculator[In, Out any](name, desc string, required []string, call func(dispatch.Engine, context.Context, In) (Out, error), defaults ...defaulter) Calculator {
	return Calculator{
		Name:        name,
		Description: desc,
		Required:    required,
		run: func(ctx context.Context, e dispatch.Engine, p payload, d Defaults) (any, error) {
			for _, fill := range defaults {
				fill(p, d)
			}
			in, err := decode[In](p)
			if err != nil {
				return nil, err
			}
			return call(e, ctx, in)
		},
	}
}

func withTenants(c Calculator, roster bool) Calculator {
	c.nested = map[string][]string{"tenants": tenantFields}
	c.AcceptsRoster = roster
	return c
}

func calculators() []Calculator {
	return []Calculator{
		newCalculator(scoring.CalcTenantRisk, "Tenant payment risk health score (higher is safer)",
			tenantFields, dispatch.Engine.TenantRisk, defaultAsOf),
		withTenants(newCalculator(scoring.CalcTenantRiskBatch, "Tenant risk for every tenant in a list",
			[]string{"tenants"}, dispatch.Engine.TenantRiskBatch, defaultTenantsAsOf), true),
		newCalculator(scoring.CalcCreditworthiness, "Bureau passthrough or rental-history proxy credit score",
			[]string{"renter_id"}, dispatch.Engine.Creditworthiness),
		withTenants(newCalculator(scoring.CalcCollectionForecast, "Expected rent collections for a month",
			[]string{"forecast_month", "tenants"}, dispatch.Engine.CollectionForecast,
			defaultCollectionRate, defaultTenantsAsOf), true),
		withTenants(newCalculator(scoring.CalcPortfolioRisk, "Portfolio risk score with monthly forecasts",
			[]string{"forecast_months", "tenants"}, dispatch.Engine.PortfolioRisk,
			defaultCollectionRate, defaultTenantsAsOf), true),
		withTenants(newCalculator(scoring.CalcPortfolioSummary, "Portfolio rent and payment statistics",
			[]string{"tenants"}, dispatch.Engine.PortfolioSummary, defaultTenantsAsOf), true),
		newCalculator(scoring.CalcDesirability, "Unit desirability for a prospective renter",
			rentFields, dispatch.Engine.Desirability, defaultCurrentYear),
		newCalculator(scoring.CalcNegotiation, "Renter negotiation power",
			rentFields, dispatch.Engine.Negotiation, defaultMonth),
		newCalculator(scoring.CalcRenterScore, "Renter application strength",
			[]string{"renter_id"}, dispatch.Engine.RenterScore),
		newCalculator(scoring.CalcDealScore, "Listing deal quality against the market",
			rentFields, dispatch.Engine.DealScore),
		newCalculator(scoring.CalcLeverageScore, "Market leverage around a unit",
			rentFields, dispatch.Engine.LeverageScore, defaultMonth, defaultCurrentYear),
		newCalculator(scoring.CalcRenewalStrategy, "Lease renewal recommendation and scripts",
			rentFields, dispatch.Engine.RenewalStrategy, defaultMonth),
	}
}
