package scoring

import (
	"fmt"
	"math"
)

// LeverageScoreInput describes the market conditions around a unit.
type LeverageScoreInput struct {
	CurrentRent          float64  `json:"current_rent"`
	MarketRent           float64  `json:"market_rent"`
	OccupancyRate        *float64 `json:"occupancy_rate,omitempty"`
	Month                int      `json:"month"`
	YearBuilt            *int     `json:"year_built,omitempty"`
	CurrentYear          int      `json:"current_year"`
	GoogleRating         *float64 `json:"google_rating,omitempty"`
	UnitCount            int      `json:"unit_count"`
	ConcessionPrevalence float64  `json:"concession_prevalence"` // 0-100
	ConcessionValue      float64  `json:"concession_value"`
}

// Validate checks domain constraints.
func (in LeverageScoreInput) Validate() error {
	if err := requireRents(in.CurrentRent, in.MarketRent); err != nil {
		return err
	}
	if err := requireOptionalMonth(in.Month); err != nil {
		return err
	}
	if err := requirePercent("occupancy_rate", in.OccupancyRate); err != nil {
		return err
	}
	if r := in.GoogleRating; r != nil && (*r < 0 || *r > 5) {
		return InvalidField("google_rating", "must be between 0 and 5, got %v", *r)
	}
	if err := requireNonNegative("unit_count", float64(in.UnitCount)); err != nil {
		return err
	}
	if err := requirePercent("concession_prevalence", &in.ConcessionPrevalence); err != nil {
		return err
	}
	return requireNonNegative("concession_value", in.ConcessionValue)
}

// Leverage levels.
const (
	LeverageHigh     = "high"
	LeverageModerate = "moderate"
	LeverageLow      = "low"
)

// LeverageScoreResult rates a renter's market leverage.
type LeverageScoreResult struct {
	Score           float64  `json:"score"`
	Grade           Grade    `json:"grade"`
	LeverageLevel   string   `json:"leverage_level"`
	Factors         []Factor `json:"factors"`
	BestMonths      []string `json:"best_months"`
	Recommendations []string `json:"recommendations"`
}

// CalculateLeverageScore scores how favorable the market is to the renter.
func CalculateLeverageScore(in LeverageScoreInput) (LeverageScoreResult, error) {
	if err := in.Validate(); err != nil {
		return LeverageScoreResult{}, err
	}
	w := leverageScoreWeights

	above := pctGap(in.CurrentRent, in.MarketRent)
	climate := in.ConcessionPrevalence
	if in.ConcessionValue > 0 {
		climate += 20
	}

	factors := []Factor{
		factor(FactorVacancyLeverage, occupancyLeverage(in.OccupancyRate, 8, 10), w[FactorVacancyLeverage],
			occupancyDescription(in.OccupancyRate)),
		factor(FactorSeasonality, SeasonalLeverage(in.Month), w[FactorSeasonality], seasonDescription(in.Month)),
		factor(FactorMarketPosition, 50+above*2.5, w[FactorMarketPosition],
			fmt.Sprintf("Rent is %.1f%% %s market", math.Abs(above), aboveBelow(above))),
		factor(FactorPropertyWeakness, propertyWeakness(in), w[FactorPropertyWeakness], "Building age, rating and size"),
		factor(FactorConcessionClimate, climate, w[FactorConcessionClimate],
			fmt.Sprintf("%.0f%% of nearby listings offer concessions", in.ConcessionPrevalence)),
	}

	score := compose(factors)
	return LeverageScoreResult{
		Score:           score,
		Grade:           GradeFromScore(score),
		LeverageLevel:   leverageLevel(score),
		Factors:         factors,
		BestMonths:      BestMonths(),
		Recommendations: leverageRecommendations(in, score, above),
	}, nil
}

func propertyWeakness(in LeverageScoreInput) float64 {
	var value float64

	switch age, known := buildingAge(in.YearBuilt, in.CurrentYear); {
	case !known:
		value += 15
	case age < 5:
	case age < 15:
		value += 10
	case age < 30:
		value += 20
	case age < 50:
		value += 30
	default:
		value += 40
	}

	switch r := in.GoogleRating; {
	case r == nil:
		value += 15
	case *r >= 4.5:
	case *r >= 4.0:
		value += 10
	case *r >= 3.5:
		value += 20
	case *r >= 3.0:
		value += 30
	default:
		value += 40
	}

	switch u := in.UnitCount; {
	case u >= 300:
	case u >= 150:
		value += 5
	case u >= 50:
		value += 10
	case u > 0:
		value += 20
	default:
		value += 10
	}
	return value
}

func leverageLevel(score float64) string {
	switch {
	case score >= 70:
		return LeverageHigh
	case score >= 45:
		return LeverageModerate
	default:
		return LeverageLow
	}
}

// BestMonths lists the months with the highest seasonal leverage, in
// calendar order.
func BestMonths() []string {
	best := seasonalLeverage[0]
	for _, v := range seasonalLeverage {
		best = math.Max(best, v)
	}
	var months []string
	for i, v := range seasonalLeverage {
		if v == best {
			months = append(months, monthNames[i])
		}
	}
	return months
}

func leverageRecommendations(in LeverageScoreInput, score, above float64) []string {
	recs := []string{}
	if above > 3 {
		recs = append(recs, fmt.Sprintf("Your rent is %.1f%% above market. Ask for a reduction toward $%.0f.", above, in.MarketRent))
	}
	if in.OccupancyRate != nil && *in.OccupancyRate < 93 {
		recs = append(recs, "Vacancy is elevated. Ask for concessions or a longer lease at the current rate.")
	}
	if in.Month != 0 && SeasonalLeverage(in.Month) <= 25 {
		recs = append(recs, "Peak leasing season favors landlords. Time your renewal for late fall or winter if you can.")
	}
	if in.ConcessionPrevalence >= 30 {
		recs = append(recs, "Concessions are common nearby. Cite competing offers.")
	}
	if score < 45 {
		recs = append(recs, "Leverage is limited. Focus on locking in the current rate.")
	}
	return recs
}
