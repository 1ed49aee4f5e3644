package scoring

import (
	"fmt"
	"math"
)

// DealScoreInput compares a listing against its market.
type DealScoreInput struct {
	CurrentRent         float64  `json:"current_rent"`
	MarketRent          float64  `json:"market_rent"`
	OccupancyRate       *float64 `json:"occupancy_rate,omitempty"` // nil means 95
	MarketOccupancyRate *float64 `json:"market_occupancy_rate,omitempty"`
	ConcessionValue     float64  `json:"concession_value"`
	SquareFeet          float64  `json:"square_feet"`
	AvgRentPerSqft      float64  `json:"avg_rent_per_sqft"` // 0 means unused
	RentTrend3m         float64  `json:"rent_trend_3m"`     // percent
	RentTrend12m        float64  `json:"rent_trend_12m"`    // percent
}

// Validate checks domain constraints.
func (in DealScoreInput) Validate() error {
	if err := requireRents(in.CurrentRent, in.MarketRent); err != nil {
		return err
	}
	if err := requirePercent("occupancy_rate", in.OccupancyRate); err != nil {
		return err
	}
	if err := requirePercent("market_occupancy_rate", in.MarketOccupancyRate); err != nil {
		return err
	}
	values := map[string]float64{
		"concession_value":  in.ConcessionValue,
		"square_feet":       in.SquareFeet,
		"avg_rent_per_sqft": in.AvgRentPerSqft,
	}
	for _, field := range sortedKeys(values) {
		if err := requireNonNegative(field, values[field]); err != nil {
			return err
		}
	}
	return nil
}

// DealScoreResult rates how good a listing is for the renter.
type DealScoreResult struct {
	Score           float64  `json:"score"`
	Grade           Grade    `json:"grade"`
	Verdict         string   `json:"verdict"`
	RentVsMarketPct float64  `json:"rent_vs_market_pct"` // multiple, 1.05 = 5% above
	Factors         []Factor `json:"factors"`
}

const defaultOccupancy = 95

var occupancyBonusThresholds = []float64{95, 90, 85, 80}

var concessionMonthBands = []struct {
	min   float64
	score float64
}{
	{2, 100},
	{1, 80},
	{0.5, 60},
}

var pricePerSqftBands = []struct {
	maxRatio float64
	score    float64
}{
	{0.85, 95},
	{0.95, 80},
	{1.05, 65},
	{1.15, 45},
	{1.25, 30},
}

var dealVerdicts = map[Grade]string{
	GradeExcellent: "Exceptional deal",
	GradeGood:      "Good deal",
	GradeFair:      "Fair deal",
	GradePoor:      "Below-average deal",
	GradeVeryPoor:  "Overpriced",
}

// CalculateDealScore scores a listing from the renter's side.
func CalculateDealScore(in DealScoreInput) (DealScoreResult, error) {
	if err := in.Validate(); err != nil {
		return DealScoreResult{}, err
	}
	w := dealScoreWeights

	below := -pctGap(in.CurrentRent, in.MarketRent)

	occ := float64(defaultOccupancy)
	if in.OccupancyRate != nil {
		occ = *in.OccupancyRate
	}
	occScore := 50.0
	for _, t := range occupancyBonusThresholds {
		if occ < t {
			occScore += 10
		}
	}
	if in.MarketOccupancyRate != nil {
		occScore += 2 * (*in.MarketOccupancyRate - occ)
	}

	months := in.ConcessionValue / in.CurrentRent
	concession := 20.0
	if months > 0 {
		concession = 40
		for _, b := range concessionMonthBands {
			if months >= b.min {
				concession = b.score
				break
			}
		}
	}

	sqft := 50.0
	sqftDesc := "No $/sqft comparison"
	if in.AvgRentPerSqft > 0 && in.SquareFeet > 0 {
		ratio := in.CurrentRent / in.SquareFeet / in.AvgRentPerSqft
		sqft = 15
		for _, b := range pricePerSqftBands {
			if ratio <= b.maxRatio {
				sqft = b.score
				break
			}
		}
		sqftDesc = fmt.Sprintf("$%.2f/sqft vs $%.2f market", in.CurrentRent/in.SquareFeet, in.AvgRentPerSqft)
	}

	trend := 50 - 4*in.RentTrend3m - 2*in.RentTrend12m

	factors := []Factor{
		factor(FactorRentPosition, 50+below*2.5, w[FactorRentPosition],
			fmt.Sprintf("Rent is %.1f%% %s market", math.Abs(below), aboveBelow(-below))),
		factor(FactorOccupancySignal, occScore, w[FactorOccupancySignal], fmt.Sprintf("%.1f%% occupied", occ)),
		factor(FactorConcessionValue, concession, w[FactorConcessionValue],
			fmt.Sprintf("%.1f months of concessions", months)),
		factor(FactorPricePerSqft, sqft, w[FactorPricePerSqft], sqftDesc),
		factor(FactorTrendMomentum, trend, w[FactorTrendMomentum],
			fmt.Sprintf("Rents %+.1f%% over 3 months, %+.1f%% over 12", in.RentTrend3m, in.RentTrend12m)),
	}

	score := compose(factors)
	grade := GradeFromScore(score)
	return DealScoreResult{
		Score:           score,
		Grade:           grade,
		Verdict:         dealVerdicts[grade],
		RentVsMarketPct: Round2(in.CurrentRent / in.MarketRent),
		Factors:         factors,
	}, nil
}
