package scoring

import (
	"fmt"
	"math"
)

// DesirabilityInput describes a unit and its market.
type DesirabilityInput struct {
	CurrentRent     float64  `json:"current_rent"`
	MarketRent      float64  `json:"market_rent"`
	OccupancyRate   *float64 `json:"occupancy_rate,omitempty"`
	GoogleRating    *float64 `json:"google_rating,omitempty"` // 0-5
	WalkScore       *float64 `json:"walk_score,omitempty"`
	TransitScore    *float64 `json:"transit_score,omitempty"`
	AmenityCount    int      `json:"amenity_count"`
	YearBuilt       *int     `json:"year_built,omitempty"`
	CurrentYear     int      `json:"current_year"`
	SquareFeet      *float64 `json:"square_feet,omitempty"`
	ConcessionValue float64  `json:"concession_value"`
}

// Validate checks domain constraints.
func (in DesirabilityInput) Validate() error {
	if err := requireRents(in.CurrentRent, in.MarketRent); err != nil {
		return err
	}
	if err := requirePercent("occupancy_rate", in.OccupancyRate); err != nil {
		return err
	}
	if r := in.GoogleRating; r != nil && (*r < 0 || *r > 5) {
		return InvalidField("google_rating", "must be between 0 and 5, got %v", *r)
	}
	if err := requirePercent("walk_score", in.WalkScore); err != nil {
		return err
	}
	if err := requirePercent("transit_score", in.TransitScore); err != nil {
		return err
	}
	if err := requireNonNegative("amenity_count", float64(in.AmenityCount)); err != nil {
		return err
	}
	if in.SquareFeet != nil {
		if err := requireNonNegative("square_feet", *in.SquareFeet); err != nil {
			return err
		}
	}
	return requireNonNegative("concession_value", in.ConcessionValue)
}

func requireRents(current, market float64) error {
	if err := requirePositive("current_rent", current); err != nil {
		return err
	}
	return requirePositive("market_rent", market)
}

// DesirabilityResult rates how attractive a unit is to a prospective renter.
type DesirabilityResult struct {
	Score      float64  `json:"score"`
	Grade      Grade    `json:"grade"`
	Factors    []Factor `json:"factors"`
	Highlights []string `json:"highlights"`
	Summary    string   `json:"summary"`
}

// CalculateDesirability scores a unit. Location quality is dropped, and the
// other weights renormalized, when no rating, walk or transit score is known.
func CalculateDesirability(in DesirabilityInput) (DesirabilityResult, error) {
	if err := in.Validate(); err != nil {
		return DesirabilityResult{}, err
	}
	w := desirabilityWeights

	gap := -pctGap(in.CurrentRent, in.MarketRent) // positive when below market
	factors := []Factor{
		factor(FactorRentValue, 50+gap*2.5, w[FactorRentValue],
			fmt.Sprintf("Rent is %.1f%% %s market", math.Abs(gap), aboveBelow(-gap))),
		occupancySignal(in.OccupancyRate, w[FactorOccupancySignal]),
	}

	loc, ok := locationQuality(in)
	if ok {
		factors = append(factors, factor(FactorLocationQuality, loc, w[FactorLocationQuality], "Rating, walkability and transit"))
	}
	factors = append(factors,
		factor(FactorPropertyValue, propertyValue(in), w[FactorPropertyValue],
			fmt.Sprintf("%d amenities, age and size", in.AmenityCount)),
		factor(FactorConcessionBonus, 30+0.7*in.ConcessionValue/in.CurrentRent*100, w[FactorConcessionBonus],
			fmt.Sprintf("$%.0f in concessions", in.ConcessionValue)),
	)
	if !ok {
		factors = renormalize(factors)
	}

	score := compose(factors)
	grade := GradeFromScore(score)
	return DesirabilityResult{
		Score:      score,
		Grade:      grade,
		Factors:    factors,
		Highlights: desirabilityHighlights(in, gap, loc, ok),
		Summary:    fmt.Sprintf("%s desirability (%.1f/100).", grade, score),
	}, nil
}

var occupancySignalBands = []struct {
	min   float64
	score float64
}{
	{97, 90},
	{95, 80},
	{90, 65},
	{85, 50},
}

func occupancySignal(occ *float64, weight float64) Factor {
	if occ == nil {
		return factor(FactorOccupancySignal, 50, weight, "Occupancy unknown")
	}
	value := 35.0
	for _, b := range occupancySignalBands {
		if *occ >= b.min {
			value = b.score
			break
		}
	}
	return factor(FactorOccupancySignal, value, weight, fmt.Sprintf("%.1f%% occupied", *occ))
}

// locationQuality averages whichever location signals are present.
func locationQuality(in DesirabilityInput) (float64, bool) {
	var sum float64
	var n int
	if in.GoogleRating != nil {
		sum += *in.GoogleRating * 20
		n++
	}
	if in.WalkScore != nil {
		sum += *in.WalkScore
		n++
	}
	if in.TransitScore != nil {
		sum += *in.TransitScore
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func propertyValue(in DesirabilityInput) float64 {
	value := math.Min(float64(in.AmenityCount)*8, 40)

	switch age, known := buildingAge(in.YearBuilt, in.CurrentYear); {
	case !known:
		value += 20
	case age <= 5:
		value += 35
	case age <= 15:
		value += 28
	case age <= 30:
		value += 20
	case age <= 50:
		value += 12
	default:
		value += 5
	}

	switch {
	case in.SquareFeet == nil || *in.SquareFeet == 0:
		value += 15
	case *in.SquareFeet >= 1000:
		value += 25
	case *in.SquareFeet >= 750:
		value += 20
	case *in.SquareFeet >= 500:
		value += 15
	default:
		value += 10
	}
	return value
}

// buildingAge is unknown when either year is missing.
func buildingAge(yearBuilt *int, currentYear int) (int, bool) {
	if yearBuilt == nil || *yearBuilt <= 0 || currentYear <= 0 {
		return 0, false
	}
	age := currentYear - *yearBuilt
	if age < 0 {
		age = 0
	}
	return age, true
}

func desirabilityHighlights(in DesirabilityInput, gap, loc float64, hasLoc bool) []string {
	highlights := []string{}
	if gap >= 5 {
		highlights = append(highlights, fmt.Sprintf("Priced %.1f%% below market", gap))
	}
	if in.OccupancyRate != nil && *in.OccupancyRate >= 95 {
		highlights = append(highlights, "High occupancy signals strong demand")
	}
	if hasLoc && loc >= 75 {
		highlights = append(highlights, "Strong location scores")
	}
	if in.AmenityCount >= 5 {
		highlights = append(highlights, fmt.Sprintf("%d amenities", in.AmenityCount))
	}
	if in.ConcessionValue > 0 {
		highlights = append(highlights, fmt.Sprintf("$%.0f move-in concession", in.ConcessionValue))
	}
	return highlights
}

func aboveBelow(pct float64) string {
	if pct >= 0 {
		return "above"
	}
	return "below"
}
