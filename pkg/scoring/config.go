package scoring

import (
	"fmt"
	"math"
	"sort"
)

// WeightSet maps factor names to their share of a calculator's total.
// Every calculator's set must sum to 1.0.
type WeightSet map[string]float64

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, name := range w.Names() {
		if w[name] < 0 {
			return fmt.Errorf("negative weight for %s: %f", name, w[name])
		}
	}
	return nil
}

// Names returns factor names in sorted order.
func (w WeightSet) Names() []string {
	names := make([]string, 0, len(w))
	for k := range w {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Factor names.
const (
	// Tenant risk
	FactorPaymentReliability = "payment_reliability"
	FactorBalanceSufficiency = "balance_sufficiency"
	FactorAccountStanding    = "account_standing"
	FactorIncomeAdequacy     = "income_adequacy"
	FactorLeaseStability     = "lease_stability"

	// Desirability
	FactorRentValue       = "rent_value"
	FactorOccupancySignal = "occupancy_signal"
	FactorLocationQuality = "location_quality"
	FactorPropertyValue   = "property_value"
	FactorConcessionBonus = "concession_bonus"

	// Negotiation power
	FactorRentGap         = "rent_gap"
	FactorOccupancy       = "occupancy"
	FactorSeasonalTiming  = "seasonal_timing"
	FactorTenantValue     = "tenant_value"
	FactorCompetingOffers = "competing_offers"

	// Renter score
	FactorRentalHistory = "rental_history"
	FactorIncomeRatio   = "income_ratio"
	FactorEmployment    = "employment"
	FactorPaymentStreak = "payment_streak"
	FactorVerification  = "verification"

	// Deal score
	FactorRentPosition    = "rent_position"
	FactorConcessionValue = "concession_value"
	FactorPricePerSqft    = "price_per_sqft"
	FactorTrendMomentum   = "trend_momentum"

	// Leverage score
	FactorVacancyLeverage   = "vacancy_leverage"
	FactorSeasonality       = "seasonality"
	FactorMarketPosition    = "market_position"
	FactorPropertyWeakness  = "property_weakness"
	FactorConcessionClimate = "concession_climate"

	// Renewal strategy
	FactorRentRatio   = "rent_ratio"
	FactorRecentTrend = "recent_trend"
)

var (
	tenantRiskWeights = WeightSet{
		FactorPaymentReliability: 0.35,
		FactorBalanceSufficiency: 0.20,
		FactorAccountStanding:    0.15,
		FactorIncomeAdequacy:     0.15,
		FactorLeaseStability:     0.15,
	}

	desirabilityWeights = WeightSet{
		FactorRentValue:       0.30,
		FactorOccupancySignal: 0.15,
		FactorLocationQuality: 0.20,
		FactorPropertyValue:   0.20,
		FactorConcessionBonus: 0.15,
	}

	negotiationWeights = WeightSet{
		FactorRentGap:         0.30,
		FactorOccupancy:       0.25,
		FactorSeasonalTiming:  0.15,
		FactorTenantValue:     0.20,
		FactorCompetingOffers: 0.10,
	}

	renterScoreWeights = WeightSet{
		FactorRentalHistory: 0.20,
		FactorIncomeRatio:   0.25,
		FactorEmployment:    0.20,
		FactorPaymentStreak: 0.20,
		FactorVerification:  0.15,
	}

	dealScoreWeights = WeightSet{
		FactorRentPosition:    0.35,
		FactorOccupancySignal: 0.20,
		FactorConcessionValue: 0.15,
		FactorPricePerSqft:    0.15,
		FactorTrendMomentum:   0.15,
	}

	leverageScoreWeights = WeightSet{
		FactorVacancyLeverage:   0.30,
		FactorSeasonality:       0.20,
		FactorMarketPosition:    0.20,
		FactorPropertyWeakness:  0.15,
		FactorConcessionClimate: 0.15,
	}

	renewalWeights = WeightSet{
		FactorRentRatio:   0.35,
		FactorOccupancy:   0.30,
		FactorSeasonality: 0.20,
		FactorRecentTrend: 0.15,
	}
)

// Portfolio blend: current tenant risk moves faster than long-run collection
// behavior, so it carries the larger share.
const (
	portfolioTenantWeight     = 0.7
	portfolioHistoricalWeight = 0.3
)

// DefaultCollectionRate is the historical collection rate assumed when a
// caller supplies none.
const DefaultCollectionRate = 95.0
