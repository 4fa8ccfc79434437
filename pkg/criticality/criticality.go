package criticality

import "github.com/shopspring/decimal"

// Tier is the derived health classification for an inventory component.
type Tier string

const (
	TierCritical Tier = "CRITICAL"
	TierOptimal  Tier = "OPTIMAL"
)

// safetyRatio is the global 20% safety rule: a component is critical
// once stock falls to or below one-fifth of its nominal requirement.
var safetyRatio = decimal.RequireFromString("0.2")

// Classify derives the health tier from current stock and the nominal
// requirement. The boundary is inclusive: stock exactly at 20% of
// min_required is CRITICAL. A non-positive min_required means the
// baseline is unknown, which classifies as CRITICAL rather than
// dividing by zero.
func Classify(currentStock, minRequired int) Tier {
	if minRequired <= 0 {
		return TierCritical
	}
	floor := decimal.NewFromInt(int64(minRequired)).Mul(safetyRatio)
	if decimal.NewFromInt(int64(currentStock)).Cmp(floor) <= 0 {
		return TierCritical
	}
	return TierOptimal
}

// StockPercent reports current stock as a percentage of min_required,
// capped at 100 for display. Returns 0 when the baseline is invalid.
func StockPercent(currentStock, minRequired int) int {
	if minRequired <= 0 {
		return 0
	}
	pct := currentStock * 100 / minRequired
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
