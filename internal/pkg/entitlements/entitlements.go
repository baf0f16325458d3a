package entitlements

import "strings"

// Plan is the internal subscription tier, independent of PayPal plan ids.
type Plan string

const (
	PlanPro  Plan = "PRO"
	PlanPlus Plan = "PLUS"
)

// Plans lists every tier from highest to lowest.
var Plans = []Plan{PlanPro, PlanPlus}

// ParsePlan normalizes a plan code. Unknown codes are rejected.
func ParsePlan(raw string) (Plan, bool) {
	p := Plan(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PlanPro, PlanPlus:
		return p, true
	default:
		return "", false
	}
}

// Rank orders tiers; higher is better. Unknown plans rank 0.
func Rank(p Plan) int {
	switch p {
	case PlanPro:
		return 2
	case PlanPlus:
		return 1
	default:
		return 0
	}
}

// Highest is the tier granted when neither the PayPal plan id nor the
// subscription's custom_id names a known plan.
func Highest() Plan {
	best := Plans[0]
	for _, p := range Plans[1:] {
		if Rank(p) > Rank(best) {
			best = p
		}
	}
	return best
}

// Valid reports whether p is exactly one of the known plan codes.
func (p Plan) Valid() bool {
	for _, known := range Plans {
		if p == known {
			return true
		}
	}
	return false
}

func (p Plan) String() string {
	return string(p)
}
