package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Credit score range.
const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// CreditworthinessInput carries either a bureau score or the rental signals a
// proxy score is built from.
type CreditworthinessInput struct {
	RenterID string `json:"renter_id"`

	// ActualCreditScore is used verbatim when present.
	ActualCreditScore *int `json:"actual_credit_score,omitempty"`

	OnTimePayments     int      `json:"on_time_payments"`
	LatePayments       int      `json:"late_payments"`
	MissedPayments     int      `json:"missed_payments"`
	TenureMonths       int      `json:"tenure_months"`
	EmploymentVerified bool     `json:"employment_verified"`
	EmploymentMonths   int      `json:"employment_months"`
	IncomeConsistency  *float64 `json:"income_consistency,omitempty"` // 0-100
	PriorEvictions     int      `json:"prior_evictions"`
}

// Validate checks domain constraints.
func (in CreditworthinessInput) Validate() error {
	if strings.TrimSpace(in.RenterID) == "" {
		return InvalidField("renter_id", "is required")
	}
	if s := in.ActualCreditScore; s != nil && (*s < MinCreditScore || *s > MaxCreditScore) {
		return InvalidField("actual_credit_score", "must be between %d and %d, got %d", MinCreditScore, MaxCreditScore, *s)
	}
	counts := map[string]int{
		"on_time_payments":  in.OnTimePayments,
		"late_payments":     in.LatePayments,
		"missed_payments":   in.MissedPayments,
		"tenure_months":     in.TenureMonths,
		"employment_months": in.EmploymentMonths,
		"prior_evictions":   in.PriorEvictions,
	}
	for _, field := range sortedKeys(counts) {
		if err := requireNonNegative(field, float64(counts[field])); err != nil {
			return err
		}
	}
	return requirePercent("income_consistency", in.IncomeConsistency)
}

// CreditAdjustment is one signed step applied to the proxy baseline.
type CreditAdjustment struct {
	Name        string  `json:"name"`
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

// CreditworthinessResult is a 300-850 score with tier and deposit guidance.
type CreditworthinessResult struct {
	RenterID          string             `json:"renter_id"`
	CreditScore       int                `json:"credit_score"`
	IsProxy           bool               `json:"is_proxy"`
	CreditTier        CreditTier         `json:"credit_tier"`
	DepositMultiplier float64            `json:"deposit_multiplier"`
	Confidence        string             `json:"confidence"`
	Adjustments       []CreditAdjustment `json:"adjustments"`
	Explanation       string             `json:"explanation"`
}

const (
	proxyBaseline          = 575
	onTimeRatioPivot       = 0.8
	onTimeRatioScale       = 500
	maxPaymentPenalty      = -150
	maxPaymentBonus        = 100
	missedPaymentPoints    = 25
	tenureCapMonths        = 60
	tenurePointsPerMonth   = 1.5
	employmentVerifiedBase = 40
	employmentPerMonth     = 0.5
	unverifiedEmployment   = -20
	consistencyPivot       = 50
	consistencyScale       = 1.2
	evictionPenalty        = 200
)

// CalculateCreditworthiness passes an actual score through untouched or
// builds a proxy from rental signals.
func CalculateCreditworthiness(in CreditworthinessInput) (CreditworthinessResult, error) {
	if err := in.Validate(); err != nil {
		return CreditworthinessResult{}, err
	}

	if in.ActualCreditScore != nil {
		score := *in.ActualCreditScore
		tier, mult := CreditTierFromScore(float64(score))
		return CreditworthinessResult{
			RenterID:          in.RenterID,
			CreditScore:       score,
			IsProxy:           false,
			CreditTier:        tier,
			DepositMultiplier: mult,
			Confidence:        "verified",
			Adjustments:       []CreditAdjustment{},
			Explanation:       fmt.Sprintf("Bureau score of %d places the renter in the %s tier.", score, tier),
		}, nil
	}

	adj := proxyAdjustments(in)
	total := float64(proxyBaseline)
	for _, a := range adj {
		total += a.Points
	}
	score := int(Clamp(math.Round(total), MinCreditScore, MaxCreditScore))
	tier, mult := CreditTierFromScore(float64(score))

	return CreditworthinessResult{
		RenterID:          in.RenterID,
		CreditScore:       score,
		IsProxy:           true,
		CreditTier:        tier,
		DepositMultiplier: mult,
		Confidence:        proxyConfidence(in),
		Adjustments:       adj,
		Explanation: fmt.Sprintf("Proxy score of %d estimated from rental history (%s tier, %.2fx deposit).",
			score, tier, mult),
	}, nil
}

func proxyAdjustments(in CreditworthinessInput) []CreditAdjustment {
	var adj []CreditAdjustment

	total := in.OnTimePayments + in.LatePayments + in.MissedPayments
	if total > 0 {
		ratio := float64(in.OnTimePayments) / float64(total)
		pts := Clamp((ratio-onTimeRatioPivot)*onTimeRatioScale, maxPaymentPenalty, maxPaymentBonus)
		adj = append(adj, CreditAdjustment{"payment_history", Round1(pts),
			fmt.Sprintf("%.0f%% of %d payments on time", ratio*100, total)})
	} else {
		adj = append(adj, CreditAdjustment{"payment_history", 0, "No payment history"})
	}

	if in.MissedPayments > 0 {
		adj = append(adj, CreditAdjustment{"missed_payments", -float64(missedPaymentPoints * in.MissedPayments),
			fmt.Sprintf("%d missed payments", in.MissedPayments)})
	}

	tenure := math.Min(float64(in.TenureMonths), tenureCapMonths)
	adj = append(adj, CreditAdjustment{"tenure", Round1(tenure * tenurePointsPerMonth),
		fmt.Sprintf("%d months of tenancy", in.TenureMonths)})

	if in.EmploymentVerified {
		months := math.Min(float64(in.EmploymentMonths), tenureCapMonths)
		adj = append(adj, CreditAdjustment{"employment", Round1(employmentVerifiedBase + months*employmentPerMonth),
			fmt.Sprintf("Verified employment, %d months", in.EmploymentMonths)})
	} else {
		adj = append(adj, CreditAdjustment{"employment", unverifiedEmployment, "Employment not verified"})
	}

	if in.IncomeConsistency != nil {
		ic := *in.IncomeConsistency
		adj = append(adj, CreditAdjustment{"income_consistency", Round1((ic - consistencyPivot) * consistencyScale),
			fmt.Sprintf("Income consistency %.0f/100", ic)})
	}

	if in.PriorEvictions > 0 {
		adj = append(adj, CreditAdjustment{"evictions", -float64(evictionPenalty * in.PriorEvictions),
			fmt.Sprintf("%d prior evictions", in.PriorEvictions)})
	}
	return adj
}

func proxyConfidence(in CreditworthinessInput) string {
	payments := in.OnTimePayments + in.LatePayments + in.MissedPayments
	switch {
	case payments >= 12 && in.TenureMonths >= 24:
		return "high"
	case payments < 3:
		return "low"
	default:
		return "medium"
	}
}
