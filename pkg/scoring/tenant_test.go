package scoring_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscore/rentscore/pkg/scoring"
)

func ptr[T any](v T) *T { return &v }

func perfectTenant() scoring.TenantRiskInput {
	return scoring.TenantRiskInput{
		RenterID:             "r-perfect",
		RenterName:           "Avery Quinn",
		OnTimePayments:       24,
		HasSufficientBalance: ptr(true),
		EmploymentVerified:   true,
		RentAmount:           1500,
		VerifiedIncome:       ptr(72000.0),
		LeaseMonthsRemaining: 10,
	}
}

func highRiskTenant() scoring.TenantRiskInput {
	return scoring.TenantRiskInput{
		RenterID:             "r-risky",
		OnTimePayments:       2,
		LatePayments:         10,
		MissedPayments:       4,
		HasSufficientBalance: ptr(false),
		RentAmount:           2000,
		VerifiedIncome:       ptr(0.0),
		IsMonthToMonth:       true,
	}
}

func TestTenantRiskPerfectTenant(t *testing.T) {
	res, err := scoring.CalculateTenantRisk(perfectTenant())
	require.NoError(t, err)

	assert.Equal(t, scoring.RiskLow, res.RiskCategory)
	assert.GreaterOrEqual(t, res.RiskScore, 75.0)
	assert.InDelta(t, 97.0, res.RiskScore, 0.05)
	assert.Equal(t, "r-perfect", res.RenterID)
	assert.Equal(t, 1500.0, res.RentAmount)
	assert.Len(t, res.Factors, 5)
}

func TestTenantRiskHighRiskTenant(t *testing.T) {
	res, err := scoring.CalculateTenantRisk(highRiskTenant())
	require.NoError(t, err)

	assert.Less(t, res.RiskScore, 50.0)
	assert.Contains(t, []scoring.RiskCategory{scoring.RiskHigh, scoring.RiskCritical}, res.RiskCategory)
	assert.InDelta(t, 24.0, res.RiskScore, 0.05)
	assert.Equal(t, scoring.RiskCritical, res.RiskCategory)
}

func TestTenantRiskDefaults(t *testing.T) {
	res, err := scoring.CalculateTenantRisk(scoring.TenantRiskInput{RenterID: "r-1", RentAmount: 1200})
	require.NoError(t, err)

	// 50*.35 + 40*.20 + 100*.15 + 30*.15 + 25*.15
	assert.InDelta(t, 48.8, res.RiskScore, 0.05)
	assert.Equal(t, scoring.RiskHigh, res.RiskCategory)
	assert.NotEmpty(t, res.Recommendation)
	for _, f := range res.Factors {
		assert.NotEmpty(t, f.Description, f.Name)
	}
}

func TestTenantRiskFactors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*scoring.TenantRiskInput)
		factor string
		want   float64
	}{
		{"no history", func(in *scoring.TenantRiskInput) { in.OnTimePayments = 0 }, scoring.FactorPaymentReliability, 50},
		{"days late capped", func(in *scoring.TenantRiskInput) { in.AvgDaysLate = 40 }, scoring.FactorPaymentReliability, 70},
		{"one missed", func(in *scoring.TenantRiskInput) { in.OnTimePayments = 9; in.MissedPayments = 1 }, scoring.FactorPaymentReliability, 75},
		{"one late", func(in *scoring.TenantRiskInput) { in.OnTimePayments = 9; in.LatePayments = 1 }, scoring.FactorPaymentReliability, 87},
		{"balance unknown", func(in *scoring.TenantRiskInput) { in.HasSufficientBalance = nil }, scoring.FactorBalanceSufficiency, 40},
		{"balance short", func(in *scoring.TenantRiskInput) { in.HasSufficientBalance = ptr(false) }, scoring.FactorBalanceSufficiency, 0},
		{"delinquent", func(in *scoring.TenantRiskInput) { in.AccountStatus = "Delinquent" }, scoring.FactorAccountStanding, 25},
		{"income 30pct", func(in *scoring.TenantRiskInput) { in.VerifiedIncome = ptr(60000.0) }, scoring.FactorIncomeAdequacy, 90},
		{"income 60pct", func(in *scoring.TenantRiskInput) { in.VerifiedIncome = ptr(30000.0) }, scoring.FactorIncomeAdequacy, 20},
		{"employment unverified", func(in *scoring.TenantRiskInput) { in.EmploymentVerified = false }, scoring.FactorIncomeAdequacy, 90},
		{"income unverified", func(in *scoring.TenantRiskInput) { in.VerifiedIncome = nil }, scoring.FactorIncomeAdequacy, 50},
		{"month to month", func(in *scoring.TenantRiskInput) { in.IsMonthToMonth = true }, scoring.FactorLeaseStability, 30},
		{"long lease", func(in *scoring.TenantRiskInput) { in.LeaseMonthsRemaining = 12 }, scoring.FactorLeaseStability, 100},
		{"short lease", func(in *scoring.TenantRiskInput) { in.LeaseMonthsRemaining = 3 }, scoring.FactorLeaseStability, 60},
		{"ending lease", func(in *scoring.TenantRiskInput) { in.LeaseMonthsRemaining = 0 }, scoring.FactorLeaseStability, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := perfectTenant()
			tt.mutate(&in)
			res, err := scoring.CalculateTenantRisk(in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, factorValue(t, res.Factors, tt.factor), 0.05)
		})
	}
}

func TestTenantRiskDates(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ms := func(tm time.Time) *int64 { return ptr(tm.UnixMilli()) }
	daysAgo := func(n int) *int64 { return ms(asOf.AddDate(0, 0, -n)) }

	tests := []struct {
		name    string
		mutate  func(*scoring.TenantRiskInput)
		balance float64
		lease   float64
		score   float64
	}{
		{"fresh balance check", func(in *scoring.TenantRiskInput) { in.BalanceCheckDate = daysAgo(5) }, 100, 80, 97},
		{"check at the window edge", func(in *scoring.TenantRiskInput) { in.BalanceCheckDate = daysAgo(30) }, 100, 80, 97},
		{"check just past the window", func(in *scoring.TenantRiskInput) { in.BalanceCheckDate = daysAgo(31) }, 40, 80, 85},
		{"check from 2022", func(in *scoring.TenantRiskInput) {
			in.BalanceCheckDate = ms(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		}, 40, 80, 85},
		{"stale short balance", func(in *scoring.TenantRiskInput) {
			in.HasSufficientBalance = ptr(false)
			in.BalanceCheckDate = daysAgo(90)
		}, 40, 80, 85},
		{"stale check without as_of", func(in *scoring.TenantRiskInput) {
			in.AsOf = nil
			in.BalanceCheckDate = daysAgo(400)
		}, 100, 80, 97},
		{"tenant since 2015", func(in *scoring.TenantRiskInput) {
			in.LeaseStartDate = ms(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC))
		}, 100, 90, 98.5},
		{"one year tenure", func(in *scoring.TenantRiskInput) { in.LeaseStartDate = daysAgo(365) }, 100, 80, 97},
		{"long tenure without as_of", func(in *scoring.TenantRiskInput) {
			in.AsOf = nil
			in.LeaseStartDate = ms(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC))
		}, 100, 80, 97},
		{"long month-to-month", func(in *scoring.TenantRiskInput) {
			in.IsMonthToMonth = true
			in.LeaseStartDate = daysAgo(1000)
		}, 100, 40, 91},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := perfectTenant()
			in.AsOf = ms(asOf)
			tt.mutate(&in)
			res, err := scoring.CalculateTenantRisk(in)
			require.NoError(t, err)
			assert.InDelta(t, tt.balance, factorValue(t, res.Factors, scoring.FactorBalanceSufficiency), 0.05)
			assert.InDelta(t, tt.lease, factorValue(t, res.Factors, scoring.FactorLeaseStability), 0.05)
			assert.InDelta(t, tt.score, res.RiskScore, 0.05)
		})
	}
}

func TestTenantRiskMissedCostsMoreThanLate(t *testing.T) {
	late := perfectTenant()
	late.OnTimePayments, late.LatePayments = 20, 2
	missed := perfectTenant()
	missed.OnTimePayments, missed.MissedPayments = 20, 2

	l, err := scoring.CalculateTenantRisk(late)
	require.NoError(t, err)
	m, err := scoring.CalculateTenantRisk(missed)
	require.NoError(t, err)
	assert.Less(t, m.RiskScore, l.RiskScore)
}

func TestTenantRiskInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*scoring.TenantRiskInput)
		field  string
	}{
		{"missing renter", func(in *scoring.TenantRiskInput) { in.RenterID = "" }, "renter_id"},
		{"negative rent", func(in *scoring.TenantRiskInput) { in.RentAmount = -1 }, "rent_amount"},
		{"negative late", func(in *scoring.TenantRiskInput) { in.LatePayments = -2 }, "late_payments"},
		{"negative days late", func(in *scoring.TenantRiskInput) { in.AvgDaysLate = -0.5 }, "avg_days_late"},
		{"negative income", func(in *scoring.TenantRiskInput) { in.VerifiedIncome = ptr(-100.0) }, "verified_income"},
		{"negative as_of", func(in *scoring.TenantRiskInput) { in.AsOf = ptr(int64(-1)) }, "as_of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := perfectTenant()
			tt.mutate(&in)
			_, err := scoring.CalculateTenantRisk(in)
			require.Error(t, err)
			assert.True(t, scoring.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestTenantRiskIdempotent(t *testing.T) {
	a, err := scoring.CalculateTenantRisk(highRiskTenant())
	require.NoError(t, err)
	b, err := scoring.CalculateTenantRisk(highRiskTenant())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTenantRiskBatchPositional(t *testing.T) {
	tenants := []scoring.TenantRiskInput{perfectTenant(), highRiskTenant()}
	for i := 0; i < 30; i++ {
		tenants = append(tenants, scoring.TenantRiskInput{
			RenterID:       fmt.Sprintf("r-%d", i),
			RentAmount:     float64(1000 + i*10),
			OnTimePayments: i,
			LatePayments:   i % 4,
		})
	}

	engine := scoring.NewEngine(scoring.WithConcurrency(4))
	results, err := engine.TenantRiskBatch(context.Background(), scoring.TenantRiskBatchInput{Tenants: tenants})
	require.NoError(t, err)
	require.Len(t, results, len(tenants))

	for i, in := range tenants {
		single, err := scoring.CalculateTenantRisk(in)
		require.NoError(t, err)
		assert.Equal(t, single, results[i], "tenant %d", i)
	}
}

func TestTenantRiskBatchPropagatesFirstInvalid(t *testing.T) {
	bad1 := perfectTenant()
	bad1.RentAmount = -5
	bad2 := perfectTenant()
	bad2.RenterID = ""

	engine := scoring.NewEngine()
	_, err := engine.TenantRiskBatch(context.Background(), scoring.TenantRiskBatchInput{
		Tenants: []scoring.TenantRiskInput{perfectTenant(), bad1, bad2},
	})
	require.Error(t, err)
	assert.True(t, scoring.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "tenants[1]")
	assert.Contains(t, err.Error(), "rent_amount")
}

func TestTenantRiskBatchEmpty(t *testing.T) {
	_, err := scoring.NewEngine().TenantRiskBatch(context.Background(), scoring.TenantRiskBatchInput{})
	assert.True(t, scoring.IsInvalidInput(err))
}

func factorValue(t *testing.T, factors []scoring.Factor, name string) float64 {
	t.Helper()
	for _, f := range factors {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("factor %s not found", name)
	return 0
}
