package scoring

import (
	"fmt"
	"math"
	"strings"
)

// NegotiationInput describes a renter's position ahead of a rent conversation.
type NegotiationInput struct {
	CurrentRent       float64  `json:"current_rent"`
	MarketRent        float64  `json:"market_rent"`
	OccupancyRate     *float64 `json:"occupancy_rate,omitempty"`
	Month             int      `json:"month"` // 1-12
	TenureMonths      int      `json:"tenure_months"`
	OnTimePaymentRate *float64 `json:"on_time_payment_rate,omitempty"`
	CompetingOffers   int      `json:"competing_offers"`
}

// Validate checks domain constraints.
func (in NegotiationInput) Validate() error {
	if err := requireRents(in.CurrentRent, in.MarketRent); err != nil {
		return err
	}
	if err := requireOptionalMonth(in.Month); err != nil {
		return err
	}
	if err := requirePercent("occupancy_rate", in.OccupancyRate); err != nil {
		return err
	}
	if err := requirePercent("on_time_payment_rate", in.OnTimePaymentRate); err != nil {
		return err
	}
	if err := requireNonNegative("tenure_months", float64(in.TenureMonths)); err != nil {
		return err
	}
	return requireNonNegative("competing_offers", float64(in.CompetingOffers))
}

// requireOptionalMonth accepts zero as "not given".
func requireOptionalMonth(m int) error {
	if m == 0 {
		return nil
	}
	return requireMonth("month", m)
}

// Negotiation power levels.
const (
	PowerStrong   = "strong"
	PowerModerate = "moderate"
	PowerWeak     = "weak"
)

// NegotiationResult rates a renter's bargaining power.
type NegotiationResult struct {
	Score         float64  `json:"score"`
	Grade         Grade    `json:"grade"`
	PowerLevel    string   `json:"power_level"`
	Factors       []Factor `json:"factors"`
	TalkingPoints []string `json:"talking_points"`
	Script        string   `json:"script"`
}

// CalculateNegotiation scores how much leverage a renter has.
func CalculateNegotiation(in NegotiationInput) (NegotiationResult, error) {
	if err := in.Validate(); err != nil {
		return NegotiationResult{}, err
	}
	w := negotiationWeights

	above := pctGap(in.CurrentRent, in.MarketRent)
	occ := occupancyLeverage(in.OccupancyRate, 5, 25)

	rateScore := 25.0
	if in.OnTimePaymentRate != nil {
		rateScore = *in.OnTimePaymentRate * 0.5
	}
	tenantValue := math.Min(float64(in.TenureMonths)*2.5, 50) + rateScore

	factors := []Factor{
		factor(FactorRentGap, 50+above*2.5, w[FactorRentGap],
			fmt.Sprintf("Rent is %.1f%% %s market", math.Abs(above), aboveBelow(above))),
		factor(FactorOccupancy, occ, w[FactorOccupancy], occupancyDescription(in.OccupancyRate)),
		factor(FactorSeasonalTiming, SeasonalLeverage(in.Month), w[FactorSeasonalTiming], seasonDescription(in.Month)),
		factor(FactorTenantValue, tenantValue, w[FactorTenantValue],
			fmt.Sprintf("%d months of tenancy", in.TenureMonths)),
		factor(FactorCompetingOffers, math.Min(float64(in.CompetingOffers)*25, 100), w[FactorCompetingOffers],
			fmt.Sprintf("%d competing offers", in.CompetingOffers)),
	}

	score := compose(factors)
	level := powerLevel(score)
	return NegotiationResult{
		Score:         score,
		Grade:         GradeFromScore(score),
		PowerLevel:    level,
		Factors:       factors,
		TalkingPoints: negotiationPoints(in, above),
		Script:        negotiationScript(in, level, above),
	}, nil
}

// occupancyLeverage turns vacancy into renter leverage; nil occupancy is neutral.
func occupancyLeverage(occ *float64, perPoint, base float64) float64 {
	if occ == nil {
		return 50
	}
	return (100-*occ)*perPoint + base
}

func occupancyDescription(occ *float64) string {
	if occ == nil {
		return "Occupancy unknown"
	}
	return fmt.Sprintf("Building is %.1f%% occupied", *occ)
}

func seasonDescription(month int) string {
	if month == 0 {
		return "Month unknown"
	}
	return fmt.Sprintf("%s leasing season", monthName(month))
}

func powerLevel(score float64) string {
	switch {
	case score >= 70:
		return PowerStrong
	case score >= 45:
		return PowerModerate
	default:
		return PowerWeak
	}
}

func negotiationPoints(in NegotiationInput, above float64) []string {
	points := []string{}
	if above > 0 {
		points = append(points, fmt.Sprintf("My rent of $%.0f is %.1f%% above the $%.0f market rate.",
			in.CurrentRent, above, in.MarketRent))
	}
	if in.OccupancyRate != nil && *in.OccupancyRate < 95 {
		points = append(points, fmt.Sprintf("The building is only %.1f%% occupied, so keeping a reliable tenant matters.",
			*in.OccupancyRate))
	}
	if SeasonalLeverage(in.Month) >= 60 {
		points = append(points, fmt.Sprintf("Few renters move in %s, so a vacancy would be slow to fill.", monthName(in.Month)))
	}
	if in.TenureMonths >= 12 {
		points = append(points, fmt.Sprintf("I have been a tenant for %d months.", in.TenureMonths))
	}
	if in.OnTimePaymentRate != nil && *in.OnTimePaymentRate >= 95 {
		points = append(points, fmt.Sprintf("I pay on time %.0f%% of the time.", *in.OnTimePaymentRate))
	}
	if in.CompetingOffers > 0 {
		points = append(points, fmt.Sprintf("I have %d other offers available.", in.CompetingOffers))
	}
	return points
}

func negotiationScript(in NegotiationInput, level string, above float64) string {
	var b strings.Builder
	b.WriteString("Hi, I'd like to talk about my rent before renewing. ")
	switch level {
	case PowerStrong:
		target := math.Min(in.CurrentRent, in.MarketRent) * 0.95
		fmt.Fprintf(&b, "Based on current market rates, I'd like to propose $%.0f per month.", target)
	case PowerModerate:
		if above > 0 {
			fmt.Fprintf(&b, "Comparable units rent for about $%.0f. Could we bring my rent closer to that?", in.MarketRent)
		} else {
			b.WriteString("I'd like to renew at my current rate. Would you consider holding it flat?")
		}
	default:
		b.WriteString("I'd like to renew. Is there any flexibility on the increase or on move-in concessions?")
	}
	return b.String()
}
