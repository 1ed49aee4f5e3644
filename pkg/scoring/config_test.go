package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentscore/rentscore/pkg/scoring"
)

func TestWeightsSumToOne(t *testing.T) {
	for name, ws := range scoring.Weights() {
		assert.InDelta(t, 1.0, ws.Sum(), 1e-9, "%s weights", name)
		assert.NoError(t, ws.Validate(), name)
	}
}

func TestWeightsReturnsCopy(t *testing.T) {
	w := scoring.Weights()
	w[scoring.CalcTenantRisk][scoring.FactorPaymentReliability] = 0.9

	fresh := scoring.Weights()
	assert.Equal(t, 0.35, fresh[scoring.CalcTenantRisk][scoring.FactorPaymentReliability])
}

func TestWeightSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		ws      scoring.WeightSet
		wantErr bool
	}{
		{"balanced", scoring.WeightSet{"a": 0.5, "b": 0.5}, false},
		{"short", scoring.WeightSet{"a": 0.5, "b": 0.4}, true},
		{"negative", scoring.WeightSet{"a": 1.5, "b": -0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ws.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDealScoreWeights(t *testing.T) {
	w := scoring.Weights()[scoring.CalcDealScore]
	assert.Equal(t, 0.35, w[scoring.FactorRentPosition])
	assert.Equal(t, 0.20, w[scoring.FactorOccupancySignal])
	assert.Equal(t, 0.15, w[scoring.FactorConcessionValue])
	assert.Equal(t, 0.15, w[scoring.FactorPricePerSqft])
	assert.Equal(t, 0.15, w[scoring.FactorTrendMomentum])
}

func TestLeverageScoreWeights(t *testing.T) {
	w := scoring.Weights()[scoring.CalcLeverageScore]
	assert.Equal(t, 0.30, w[scoring.FactorVacancyLeverage])
	assert.Equal(t, 0.20, w[scoring.FactorSeasonality])
	assert.Equal(t, 0.20, w[scoring.FactorMarketPosition])
	assert.Equal(t, 0.15, w[scoring.FactorPropertyWeakness])
	assert.Equal(t, 0.15, w[scoring.FactorConcessionClimate])
}
