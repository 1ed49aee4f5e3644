package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscore/rentscore/pkg/scoring"
)

func TestCreditworthinessPassthrough(t *testing.T) {
	res, err := scoring.CalculateCreditworthiness(scoring.CreditworthinessInput{
		RenterID:          "r-1",
		ActualCreditScore: ptr(701),
		MissedPayments:    12,
		PriorEvictions:    3,
	})
	require.NoError(t, err)

	assert.Equal(t, 701, res.CreditScore)
	assert.False(t, res.IsProxy)
	assert.Equal(t, scoring.TierGood, res.CreditTier)
	assert.Equal(t, 1.25, res.DepositMultiplier)
	assert.Equal(t, "verified", res.Confidence)
	assert.Empty(t, res.Adjustments)
}

func TestCreditworthinessProxy(t *testing.T) {
	tests := []struct {
		name       string
		in         scoring.CreditworthinessInput
		wantScore  int
		wantTier   scoring.CreditTier
		wantConfid string
	}{
		{
			name: "strong history",
			in: scoring.CreditworthinessInput{
				RenterID: "r-1", OnTimePayments: 24, TenureMonths: 24,
				EmploymentVerified: true, EmploymentMonths: 24,
			},
			// 575 + 100 + 36 + 52
			wantScore: 763, wantTier: scoring.TierExcellent, wantConfid: "high",
		},
		{
			name: "no history",
			in:   scoring.CreditworthinessInput{RenterID: "r-2"},
			// 575 - 20
			wantScore: 555, wantTier: scoring.TierVeryPoor, wantConfid: "low",
		},
		{
			name: "mixed history",
			in: scoring.CreditworthinessInput{
				RenterID: "r-3", OnTimePayments: 8, LatePayments: 1, MissedPayments: 1,
				TenureMonths: 10, IncomeConsistency: ptr(75.0),
			},
			// 575 + 0 - 25 + 15 - 20 + 30
			wantScore: 575, wantTier: scoring.TierVeryPoor, wantConfid: "medium",
		},
		{
			name: "two evictions",
			in: scoring.CreditworthinessInput{
				RenterID: "r-4", OnTimePayments: 12, TenureMonths: 12, PriorEvictions: 2,
			},
			wantScore: 300, wantTier: scoring.TierVeryPoor, wantConfid: "medium",
		},
		{
			name: "capped at top",
			in: scoring.CreditworthinessInput{
				RenterID: "r-5", OnTimePayments: 60, TenureMonths: 120,
				EmploymentVerified: true, EmploymentMonths: 120, IncomeConsistency: ptr(100.0),
			},
			// 575 + 100 + 90 + 70 + 60
			wantScore: 850, wantTier: scoring.TierExcellent, wantConfid: "high",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := scoring.CalculateCreditworthiness(tt.in)
			require.NoError(t, err)
			assert.True(t, res.IsProxy)
			assert.Equal(t, tt.wantScore, res.CreditScore)
			assert.Equal(t, tt.wantTier, res.CreditTier)
			assert.Equal(t, tt.wantConfid, res.Confidence)
			assert.GreaterOrEqual(t, res.DepositMultiplier, 1.0)
			assert.LessOrEqual(t, res.DepositMultiplier, 2.5)
		})
	}
}

func TestCreditworthinessInvalid(t *testing.T) {
	tests := []struct {
		name  string
		in    scoring.CreditworthinessInput
		field string
	}{
		{"missing renter", scoring.CreditworthinessInput{}, "renter_id"},
		{"score too low", scoring.CreditworthinessInput{RenterID: "r", ActualCreditScore: ptr(250)}, "actual_credit_score"},
		{"score too high", scoring.CreditworthinessInput{RenterID: "r", ActualCreditScore: ptr(900)}, "actual_credit_score"},
		{"negative evictions", scoring.CreditworthinessInput{RenterID: "r", PriorEvictions: -1}, "prior_evictions"},
		{"consistency out of range", scoring.CreditworthinessInput{RenterID: "r", IncomeConsistency: ptr(140.0)}, "income_consistency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scoring.CalculateCreditworthiness(tt.in)
			require.Error(t, err)
			assert.True(t, scoring.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCreditworthinessBounds(t *testing.T) {
	for on := 0; on <= 40; on += 8 {
		for missed := 0; missed <= 10; missed += 5 {
			for ev := 0; ev <= 3; ev++ {
				res, err := scoring.CalculateCreditworthiness(scoring.CreditworthinessInput{
					RenterID: "r", OnTimePayments: on, MissedPayments: missed, PriorEvictions: ev,
					TenureMonths: on * 2, EmploymentVerified: ev%2 == 0, EmploymentMonths: on,
				})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, res.CreditScore, scoring.MinCreditScore)
				assert.LessOrEqual(t, res.CreditScore, scoring.MaxCreditScore)
			}
		}
	}
}
