package scoring

import "strings"

// seasonalLeverage scores how much negotiating room a renter has in each
// calendar month. Winter is slow for leasing; summer is peak.
var seasonalLeverage = [12]float64{
	85, // Jan
	85, // Feb
	60, // Mar
	45, // Apr
	25, // May
	25, // Jun
	25, // Jul
	25, // Aug
	45, // Sep
	60, // Oct
	85, // Nov
	85, // Dec
}

// SeasonalLeverage returns the leverage table score for month (1-12).
func SeasonalLeverage(month int) float64 {
	if month < 1 || month > 12 {
		return 50
	}
	return seasonalLeverage[month-1]
}

// collectionMultiplier scales expected collections by calendar month.
var collectionMultiplier = [12]float64{
	0.97, // Jan
	0.98, // Feb
	1.00, // Mar
	1.00, // Apr
	1.00, // May
	0.99, // Jun
	0.99, // Jul
	0.98, // Aug
	1.00, // Sep
	1.00, // Oct
	0.98, // Nov
	0.95, // Dec
}

// CollectionMultiplier returns the seasonal collection multiplier for month (1-12).
func CollectionMultiplier(month int) float64 {
	if month < 1 || month > 12 {
		return 1
	}
	return collectionMultiplier[month-1]
}

// accountStandingScores maps normalized account statuses to a standing score.
var accountStandingScores = map[string]float64{
	"active":        100,
	"current":       100,
	"good_standing": 100,
	"pending":       70,
	"notice_given":  50,
	"delinquent":    25,
	"suspended":     20,
	"collections":   0,
	"evicted":       0,
}

const unknownStandingScore = 60

// AccountStandingScore scores a free-text account status.
func AccountStandingScore(status string) float64 {
	if s, ok := accountStandingScores[normalizeStatus(status)]; ok {
		return s
	}
	return unknownStandingScore
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// riskBands is ordered from the highest threshold down. Scores are health
// scores: a higher score is a safer tenant.
var riskBands = []struct {
	min      float64
	category RiskCategory
}{
	{75, RiskLow},
	{50, RiskModerate},
	{25, RiskHigh},
}

// RiskCategoryFromScore maps a 0-100 tenant score to a RiskCategory.
func RiskCategoryFromScore(score float64) RiskCategory {
	for _, b := range riskBands {
		if score >= b.min {
			return b.category
		}
	}
	return RiskCritical
}

var creditTiers = []struct {
	min        float64
	tier       CreditTier
	multiplier float64
}{
	{740, TierExcellent, 1.0},
	{670, TierGood, 1.25},
	{620, TierFair, 1.5},
	{580, TierPoor, 2.0},
}

const veryPoorMultiplier = 2.5

// CreditTierFromScore maps a 300-850 credit score to its tier and deposit
// multiplier.
func CreditTierFromScore(score float64) (CreditTier, float64) {
	for _, b := range creditTiers {
		if score >= b.min {
			return b.tier, b.multiplier
		}
	}
	return TierVeryPoor, veryPoorMultiplier
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
