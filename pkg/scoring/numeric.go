package scoring

import (
	"maps"
	"math"
	"slices"
)

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clampScore bounds a sub-score to the 0-100 scale.
func clampScore(x float64) float64 {
	return Clamp(x, 0, 100)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Round2 rounds to cents.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// WeightedSum returns the sum of value*weight over factors, rounded to one decimal.
func WeightedSum(factors []Factor) float64 {
	var total float64
	for _, f := range factors {
		total += f.Value * f.Weight
	}
	return Round1(total)
}

// gradeBands is ordered from the highest threshold down.
var gradeBands = []struct {
	min   float64
	grade Grade
}{
	{90, GradeExcellent},
	{75, GradeGood},
	{60, GradeFair},
	{40, GradePoor},
}

// GradeFromScore maps a 0-100 score to a Grade.
func GradeFromScore(score float64) Grade {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade
		}
	}
	return GradeVeryPoor
}

// factor builds a Factor with its value clamped to 0-100.
func factor(name string, value, weight float64, description string) Factor {
	v := Round1(clampScore(value))
	return Factor{
		Name:         name,
		Value:        v,
		Weight:       weight,
		Contribution: Round1(v * weight),
		Description:  description,
	}
}

// compose clamps the weighted sum of factors to the 0-100 scale.
func compose(factors []Factor) float64 {
	return clampScore(WeightedSum(factors))
}

// renormalize rescales factor weights so they sum to 1.0. Used when an
// optional factor is omitted.
func renormalize(factors []Factor) []Factor {
	var sum float64
	for _, f := range factors {
		sum += f.Weight
	}
	if sum == 0 {
		return factors
	}
	out := make([]Factor, len(factors))
	for i, f := range factors {
		f.Weight = f.Weight / sum
		f.Contribution = Round1(f.Value * f.Weight)
		out[i] = f
	}
	return out
}

// pctGap returns (a-b)/b as a percentage; b must be positive.
func pctGap(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return (a - b) / b * 100
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
