package scoring

import (
	"fmt"
	"math"
)

// RenewalStrategyInput describes a lease coming up for renewal.
type RenewalStrategyInput struct {
	CurrentRent         float64  `json:"current_rent"`
	MarketRent          float64  `json:"market_rent"`
	OccupancyRate       *float64 `json:"occupancy_rate,omitempty"`
	Month               int      `json:"month"`
	MonthsUntilLeaseEnd *int     `json:"months_until_lease_end,omitempty"`
	RentTrend3m         float64  `json:"rent_trend_3m"`
	TenureMonths        int      `json:"tenure_months"`
	OnTimePaymentRate   *float64 `json:"on_time_payment_rate,omitempty"`
	TenantName          string   `json:"tenant_name,omitempty"`
	PropertyName        string   `json:"property_name,omitempty"`
}

// Validate checks domain constraints.
func (in RenewalStrategyInput) Validate() error {
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
	if in.MonthsUntilLeaseEnd != nil {
		if err := requireNonNegative("months_until_lease_end", float64(*in.MonthsUntilLeaseEnd)); err != nil {
			return err
		}
	}
	return requireNonNegative("tenure_months", float64(in.TenureMonths))
}

// Recommended renewal actions.
const (
	ActionNegotiate = "negotiate"
	ActionRenew     = "renew"
	ActionExplore   = "explore"
)

// RenewalStrategyResult recommends how to approach a renewal.
type RenewalStrategyResult struct {
	Score                float64  `json:"score"` // leverage, 0-100
	Grade                Grade    `json:"grade"`
	Factors              []Factor `json:"factors"`
	RecommendedAction    string   `json:"recommended_action"`
	MaxDiscountPct       float64  `json:"max_discount_pct"`
	TargetRent           float64  `json:"target_rent"`
	RentVsMarketPct      float64  `json:"rent_vs_market_pct"` // multiple
	TalkingPoints        []string `json:"talking_points"`
	OpeningRequest       string   `json:"opening_request"`
	AlternativeAsk       string   `json:"alternative_ask"`
	TimingRecommendation string   `json:"timing_recommendation"`
}

const maxDiscountPct = 20

// CalculateRenewalStrategy scores renewal leverage and picks an action.
func CalculateRenewalStrategy(in RenewalStrategyInput) (RenewalStrategyResult, error) {
	if err := in.Validate(); err != nil {
		return RenewalStrategyResult{}, err
	}
	w := renewalWeights

	ratio := in.CurrentRent / in.MarketRent
	factors := []Factor{
		factor(FactorRentRatio, 50+(ratio-1)*250, w[FactorRentRatio],
			fmt.Sprintf("Paying %.2fx market rent", ratio)),
		factor(FactorOccupancy, occupancyLeverage(in.OccupancyRate, 8, 10), w[FactorOccupancy],
			occupancyDescription(in.OccupancyRate)),
		factor(FactorSeasonality, SeasonalLeverage(in.Month), w[FactorSeasonality], seasonDescription(in.Month)),
		factor(FactorRecentTrend, 50-5*in.RentTrend3m, w[FactorRecentTrend],
			fmt.Sprintf("Rents %+.1f%% over 3 months", in.RentTrend3m)),
	}
	leverage := compose(factors)

	discount := renewalDiscount(leverage, in.TenureMonths, in.OnTimePaymentRate)
	action := renewalAction(ratio, in.OccupancyRate, leverage)

	target := math.Round(in.CurrentRent * (1 - discount/100))
	if action == ActionRenew && ratio < 1 {
		target = in.CurrentRent
	}

	return RenewalStrategyResult{
		Score:                leverage,
		Grade:                GradeFromScore(leverage),
		Factors:              factors,
		RecommendedAction:    action,
		MaxDiscountPct:       discount,
		TargetRent:           target,
		RentVsMarketPct:      Round2(ratio),
		TalkingPoints:        renewalPoints(in, ratio),
		OpeningRequest:       openingRequest(in, target),
		AlternativeAsk:       alternativeAsk(in),
		TimingRecommendation: renewalTiming(in.MonthsUntilLeaseEnd),
	}, nil
}

func renewalDiscount(leverage float64, tenureMonths int, onTimeRate *float64) float64 {
	d := leverage/100*12 + math.Min(float64(tenureMonths)/12, 3)
	if onTimeRate != nil {
		switch {
		case *onTimeRate >= 95:
			d += 2
		case *onTimeRate >= 90:
			d++
		}
	}
	return Round1(Clamp(d, 0, maxDiscountPct))
}

// renewalAction walks the decision tree. Occupancy conditions never match
// when occupancy is unknown.
func renewalAction(ratio float64, occ *float64, leverage float64) string {
	hasOcc := occ != nil
	switch {
	case ratio >= 1.05 && hasOcc && *occ < 93:
		return ActionNegotiate
	case ratio < 0.98:
		return ActionRenew
	case hasOcc && *occ >= 97 && ratio <= 1.02:
		return ActionRenew
	case leverage >= 60:
		return ActionNegotiate
	case leverage <= 35:
		return ActionRenew
	default:
		return ActionExplore
	}
}

func renewalPoints(in RenewalStrategyInput, ratio float64) []string {
	points := []string{}
	if ratio > 1 {
		points = append(points, fmt.Sprintf("Current rent of $%.0f is %.1f%% above the $%.0f market rate.",
			in.CurrentRent, (ratio-1)*100, in.MarketRent))
	} else {
		points = append(points, fmt.Sprintf("Current rent of $%.0f is at or below the $%.0f market rate.",
			in.CurrentRent, in.MarketRent))
	}
	if in.TenureMonths > 0 {
		points = append(points, fmt.Sprintf("%d months as a tenant saves turnover and vacancy costs.", in.TenureMonths))
	}
	if in.OnTimePaymentRate != nil {
		points = append(points, fmt.Sprintf("%.0f%% of payments made on time.", *in.OnTimePaymentRate))
	}
	if in.OccupancyRate != nil && *in.OccupancyRate < 95 {
		points = append(points, fmt.Sprintf("Building occupancy is %.1f%%.", *in.OccupancyRate))
	}
	if in.RentTrend3m < 0 {
		points = append(points, fmt.Sprintf("Area rents fell %.1f%% over the last 3 months.", -in.RentTrend3m))
	}
	return points
}

func openingRequest(in RenewalStrategyInput, target float64) string {
	name := in.TenantName
	if name == "" {
		name = "I"
	} else {
		name = "I, " + name + ","
	}
	property := "this property"
	if in.PropertyName != "" {
		property = in.PropertyName
	}
	return fmt.Sprintf("%s would like to renew my lease at %s for $%.0f per month, based on my %d-month tenancy and current market rents of $%.0f.",
		name, property, target, in.TenureMonths, in.MarketRent)
}

func alternativeAsk(in RenewalStrategyInput) string {
	return fmt.Sprintf("If a lower rate isn't possible, would you keep rent at $%.0f for a 12-month renewal, or add a concession such as a free month or waived fees?",
		in.CurrentRent)
}

func renewalTiming(months *int) string {
	if months == nil {
		return "Start the renewal conversation 60 to 90 days before your lease ends."
	}
	switch m := *months; {
	case m > 4:
		return fmt.Sprintf("Too early. %d months remain; open the conversation 3 to 4 months before the lease ends.", m)
	case m >= 3:
		return "Optimal window. Open the renewal conversation now."
	case m == 2:
		return "Act now. The landlord will soon be planning for turnover."
	default:
		return "Late. Negotiate immediately; options narrow as the lease end approaches."
	}
}
