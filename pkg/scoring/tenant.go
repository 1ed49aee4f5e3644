package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TenantRiskInput describes one tenant's payment record, balance check,
// account status, income and lease position.
type TenantRiskInput struct {
	RenterID        string `json:"renter_id"`
	RenterName      string `json:"renter_name,omitempty"`
	PropertyID      string `json:"property_id,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`

	OnTimePayments int     `json:"on_time_payments"`
	LatePayments   int     `json:"late_payments"`
	MissedPayments int     `json:"missed_payments"`
	AvgDaysLate    float64 `json:"avg_days_late"`

	// HasSufficientBalance is nil when no balance check has been run.
	HasSufficientBalance *bool  `json:"has_sufficient_balance,omitempty"`
	BalanceCheckDate     *int64 `json:"balance_check_date,omitempty"` // epoch ms

	AccountStatus string  `json:"account_status,omitempty"`
	RentAmount    float64 `json:"rent_amount"`

	VerifiedIncome     *float64 `json:"verified_income,omitempty"` // annual
	EmploymentVerified bool     `json:"employment_verified"`

	LeaseMonthsRemaining int    `json:"lease_months_remaining"`
	IsMonthToMonth       bool   `json:"is_month_to_month"`
	LeaseStartDate       *int64 `json:"lease_start_date,omitempty"` // epoch ms

	// AsOf is the scoring time in epoch ms. Balance check age and tenure are
	// only judged when it is set.
	AsOf *int64 `json:"as_of,omitempty"`
}

// Validate checks domain constraints. Optional fields are expected to be
// defaulted already.
func (in TenantRiskInput) Validate() error {
	if strings.TrimSpace(in.RenterID) == "" {
		return InvalidField("renter_id", "is required")
	}
	checks := []struct {
		field string
		value float64
	}{
		{"rent_amount", in.RentAmount},
		{"on_time_payments", float64(in.OnTimePayments)},
		{"late_payments", float64(in.LatePayments)},
		{"missed_payments", float64(in.MissedPayments)},
		{"avg_days_late", in.AvgDaysLate},
		{"lease_months_remaining", float64(in.LeaseMonthsRemaining)},
	}
	for _, c := range checks {
		if err := requireNonNegative(c.field, c.value); err != nil {
			return err
		}
	}
	if in.VerifiedIncome != nil {
		if err := requireNonNegative("verified_income", *in.VerifiedIncome); err != nil {
			return err
		}
	}
	stamps := []struct {
		field string
		ts    *int64
	}{
		{"balance_check_date", in.BalanceCheckDate},
		{"lease_start_date", in.LeaseStartDate},
		{"as_of", in.AsOf},
	}
	for _, st := range stamps {
		if st.ts != nil {
			if err := requireNonNegative(st.field, float64(*st.ts)); err != nil {
				return err
			}
		}
	}
	return nil
}

// elapsed returns the time from ts to AsOf. ok is false when either is unset.
func (in TenantRiskInput) elapsed(ts *int64) (d time.Duration, ok bool) {
	if ts == nil || in.AsOf == nil {
		return 0, false
	}
	return time.UnixMilli(*in.AsOf).Sub(time.UnixMilli(*ts)), true
}

// TotalPayments returns the number of recorded payments.
func (in TenantRiskInput) TotalPayments() int {
	return in.OnTimePayments + in.LatePayments + in.MissedPayments
}

// TenantRiskResult is the scored view of one tenant. RiskScore is a health
// score: higher means lower risk.
type TenantRiskResult struct {
	RenterID        string       `json:"renter_id"`
	RenterName      string       `json:"renter_name"`
	PropertyID      string       `json:"property_id"`
	PropertyAddress string       `json:"property_address"`
	RiskScore       float64      `json:"risk_score"`
	RiskCategory    RiskCategory `json:"risk_category"`
	Factors         []Factor     `json:"factors"`
	Recommendation  string       `json:"recommendation"`
	RentAmount      float64      `json:"rent_amount"`
}

// CalculateTenantRisk scores a single tenant.
func CalculateTenantRisk(in TenantRiskInput) (TenantRiskResult, error) {
	if err := in.Validate(); err != nil {
		return TenantRiskResult{}, err
	}

	factors := []Factor{
		paymentReliability(in),
		balanceSufficiency(in),
		accountStanding(in),
		incomeAdequacy(in),
		leaseStability(in),
	}
	score := compose(factors)
	category := RiskCategoryFromScore(score)

	return TenantRiskResult{
		RenterID:        in.RenterID,
		RenterName:      in.RenterName,
		PropertyID:      in.PropertyID,
		PropertyAddress: in.PropertyAddress,
		RiskScore:       score,
		RiskCategory:    category,
		Factors:         factors,
		Recommendation:  tenantRecommendation(category, factors),
		RentAmount:      in.RentAmount,
	}, nil
}

const (
	noHistoryScore     = 50
	lateDayPenalty     = 1.5
	maxLateDayPenalty  = 30
	latePaymentPenalty = 3
	// Each missed payment costs five late ones.
	missedPaymentPenalty = 15
)

func paymentReliability(in TenantRiskInput) Factor {
	w := tenantRiskWeights[FactorPaymentReliability]
	total := in.TotalPayments()
	if total == 0 {
		return factor(FactorPaymentReliability, noHistoryScore, w, "No payment history on record")
	}
	value := 100*float64(in.OnTimePayments)/float64(total) -
		math.Min(in.AvgDaysLate*lateDayPenalty, maxLateDayPenalty) -
		latePaymentPenalty*float64(in.LatePayments) -
		missedPaymentPenalty*float64(in.MissedPayments)
	desc := fmt.Sprintf("%d of %d payments on time, %d late, %d missed",
		in.OnTimePayments, total, in.LatePayments, in.MissedPayments)
	return factor(FactorPaymentReliability, value, w, desc)
}

const unknownBalanceScore = 40

// BalanceCheckMaxAge is how old a balance check may be before it counts as
// no check at all.
const BalanceCheckMaxAge = 30 * 24 * time.Hour

func balanceSufficiency(in TenantRiskInput) Factor {
	w := tenantRiskWeights[FactorBalanceSufficiency]
	age, dated := in.elapsed(in.BalanceCheckDate)
	switch {
	case in.HasSufficientBalance == nil:
		return factor(FactorBalanceSufficiency, unknownBalanceScore, w, "No recent balance check")
	case dated && age > BalanceCheckMaxAge:
		return factor(FactorBalanceSufficiency, unknownBalanceScore, w,
			fmt.Sprintf("Last balance check is %d days old", int(age.Hours()/24)))
	case *in.HasSufficientBalance:
		return factor(FactorBalanceSufficiency, 100, w, "Balance covers rent")
	default:
		return factor(FactorBalanceSufficiency, 0, w, "Balance below rent amount")
	}
}

func accountStanding(in TenantRiskInput) Factor {
	status := in.AccountStatus
	if strings.TrimSpace(status) == "" {
		status = "active"
	}
	return factor(FactorAccountStanding, AccountStandingScore(status),
		tenantRiskWeights[FactorAccountStanding], "Account status: "+normalizeStatus(status))
}

var incomeRatioBands = []struct {
	maxPct float64
	score  float64
}{
	{25, 100},
	{30, 90},
	{35, 75},
	{40, 60},
	{50, 40},
}

const (
	unverifiedIncomeScore    = 30
	employmentOnlyBonus      = 20
	unverifiedEmploymentCost = 10
)

func incomeAdequacy(in TenantRiskInput) Factor {
	w := tenantRiskWeights[FactorIncomeAdequacy]
	if in.VerifiedIncome == nil || *in.VerifiedIncome <= 0 {
		value := float64(unverifiedIncomeScore)
		desc := "Income not verified"
		if in.EmploymentVerified {
			value += employmentOnlyBonus
			desc = "Income not verified, employment verified"
		}
		return factor(FactorIncomeAdequacy, value, w, desc)
	}

	ratio := in.RentAmount * 12 / *in.VerifiedIncome * 100
	value := 20.0
	for _, b := range incomeRatioBands {
		if ratio <= b.maxPct {
			value = b.score
			break
		}
	}
	if !in.EmploymentVerified {
		value -= unverifiedEmploymentCost
	}
	return factor(FactorIncomeAdequacy, value, w, fmt.Sprintf("Rent is %.1f%% of verified income", ratio))
}

const (
	longTenureMonths = 24
	longTenureBonus  = 10
	avgMonth         = 730 * time.Hour
)

// tenureMonths is the whole months since lease_start_date, or -1 when
// unknown.
func tenureMonths(in TenantRiskInput) int {
	d, ok := in.elapsed(in.LeaseStartDate)
	if !ok || d < 0 {
		return -1
	}
	return int(d / avgMonth)
}

func leaseStability(in TenantRiskInput) Factor {
	f := leaseTerm(in)
	if t := tenureMonths(in); t >= longTenureMonths {
		f = factor(f.Name, f.Value+longTenureBonus, f.Weight,
			fmt.Sprintf("%s, tenant for %d months", f.Description, t))
	}
	return f
}

func leaseTerm(in TenantRiskInput) Factor {
	w := tenantRiskWeights[FactorLeaseStability]
	if in.IsMonthToMonth {
		return factor(FactorLeaseStability, 30, w, "Month-to-month tenancy")
	}
	m := in.LeaseMonthsRemaining
	var value float64
	switch {
	case m >= 12:
		value = 100
	case m >= 6:
		value = 80
	case m >= 3:
		value = 60
	case m >= 1:
		value = 40
	default:
		value = 25
	}
	return factor(FactorLeaseStability, value, w, fmt.Sprintf("%d months remaining on lease", m))
}

func tenantRecommendation(category RiskCategory, factors []Factor) string {
	weakest := factors[0]
	for _, f := range factors[1:] {
		if f.Value < weakest.Value {
			weakest = f
		}
	}
	switch category {
	case RiskLow:
		return "Low risk. Standard monitoring is sufficient."
	case RiskModerate:
		return fmt.Sprintf("Moderate risk. Review %s and send a payment reminder before the due date.",
			strings.ReplaceAll(weakest.Name, "_", " "))
	case RiskHigh:
		return fmt.Sprintf("High risk. Contact the tenant about %s and consider a payment plan.",
			strings.ReplaceAll(weakest.Name, "_", " "))
	default:
		return "Critical risk. Escalate for immediate outreach and review collection options."
	}
}
