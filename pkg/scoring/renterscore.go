package scoring

import (
	"fmt"
	"math"
	"strings"
)

// RenterScoreInput gathers what a renter can show a prospective landlord.
type RenterScoreInput struct {
	RenterID              string  `json:"renter_id"`
	RentalHistoryMonths   int     `json:"rental_history_months"`
	RentalHistoryVerified bool    `json:"rental_history_verified"`
	MonthlyIncome         float64 `json:"monthly_income"`
	MonthlyRent           float64 `json:"monthly_rent"`
	EmploymentVerified    bool    `json:"employment_verified"`
	EmploymentMonths      int     `json:"employment_months"`
	OnTimeStreakMonths    int     `json:"on_time_streak_months"`
	LatePayments12m       int     `json:"late_payments_12m"`
	IdentityVerified      bool    `json:"identity_verified"`
	BankVerified          bool    `json:"bank_verified"`
}

// Validate checks domain constraints.
func (in RenterScoreInput) Validate() error {
	if strings.TrimSpace(in.RenterID) == "" {
		return InvalidField("renter_id", "is required")
	}
	values := map[string]float64{
		"rental_history_months": float64(in.RentalHistoryMonths),
		"monthly_income":        in.MonthlyIncome,
		"monthly_rent":          in.MonthlyRent,
		"employment_months":     float64(in.EmploymentMonths),
		"on_time_streak_months": float64(in.OnTimeStreakMonths),
		"late_payments_12m":     float64(in.LatePayments12m),
	}
	for _, field := range sortedKeys(values) {
		if err := requireNonNegative(field, values[field]); err != nil {
			return err
		}
	}
	return nil
}

// RenterScoreResult is a unified renter quality score.
type RenterScoreResult struct {
	RenterID        string   `json:"renter_id"`
	Score           float64  `json:"score"`
	Grade           Grade    `json:"grade"`
	Factors         []Factor `json:"factors"`
	ImprovementTips []string `json:"improvement_tips"`
}

var incomeMultipleBands = []struct {
	min   float64
	score float64
}{
	{3.5, 100},
	{3, 90},
	{2.5, 75},
	{2, 55},
	{1.5, 35},
}

// CalculateRenterScore blends history, affordability, employment, payment
// streak and verification. Missing data lowers the score rather than failing.
func CalculateRenterScore(in RenterScoreInput) (RenterScoreResult, error) {
	if err := in.Validate(); err != nil {
		return RenterScoreResult{}, err
	}
	w := renterScoreWeights

	history := math.Min(float64(in.RentalHistoryMonths), 60) / 60 * 70
	if in.RentalHistoryVerified {
		history += 30
	}

	income := 20.0
	incomeDesc := "Income or rent not provided"
	if in.MonthlyIncome > 0 && in.MonthlyRent > 0 {
		multiple := in.MonthlyIncome / in.MonthlyRent
		income = 15
		for _, b := range incomeMultipleBands {
			if multiple >= b.min {
				income = b.score
				break
			}
		}
		incomeDesc = fmt.Sprintf("Income is %.1fx rent", multiple)
	}

	empMonths := math.Min(float64(in.EmploymentMonths), 36) / 36
	employment := empMonths * 30
	if in.EmploymentVerified {
		employment = 60 + empMonths*40
	}

	streak := math.Min(float64(in.OnTimeStreakMonths), 24)/24*100 - 10*float64(in.LatePayments12m)

	var verification float64
	if in.IdentityVerified {
		verification += 50
	}
	if in.BankVerified {
		verification += 50
	}

	factors := []Factor{
		factor(FactorRentalHistory, history, w[FactorRentalHistory],
			fmt.Sprintf("%d months of rental history", in.RentalHistoryMonths)),
		factor(FactorIncomeRatio, income, w[FactorIncomeRatio], incomeDesc),
		factor(FactorEmployment, employment, w[FactorEmployment],
			fmt.Sprintf("%d months at current employer", in.EmploymentMonths)),
		factor(FactorPaymentStreak, streak, w[FactorPaymentStreak],
			fmt.Sprintf("%d-month on-time streak, %d late in the last year", in.OnTimeStreakMonths, in.LatePayments12m)),
		factor(FactorVerification, verification, w[FactorVerification], "Identity and bank verification"),
	}

	score := compose(factors)
	return RenterScoreResult{
		RenterID:        in.RenterID,
		Score:           score,
		Grade:           GradeFromScore(score),
		Factors:         factors,
		ImprovementTips: renterTips(in),
	}, nil
}

func renterTips(in RenterScoreInput) []string {
	tips := []string{}
	if !in.RentalHistoryVerified {
		tips = append(tips, "Verify your rental history with a past landlord reference.")
	}
	if in.MonthlyIncome <= 0 {
		tips = append(tips, "Add verified income to show affordability.")
	}
	if !in.EmploymentVerified {
		tips = append(tips, "Connect your employer to verify employment.")
	}
	if in.LatePayments12m > 0 {
		tips = append(tips, "Keep payments on time to rebuild your streak.")
	}
	if !in.IdentityVerified {
		tips = append(tips, "Complete identity verification.")
	}
	if !in.BankVerified {
		tips = append(tips, "Link a bank account to verify funds.")
	}
	return tips
}
