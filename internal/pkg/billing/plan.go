package billing

import (
	"strings"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/entitlements"
)

// PlanCatalog maps internal plan codes to the PayPal plan ids configured for
// them.
type PlanCatalog struct {
	ids map[entitlements.Plan]string
}

func NewPlanCatalog(proPlanID, plusPlanID string) PlanCatalog {
	return PlanCatalog{ids: map[entitlements.Plan]string{
		entitlements.PlanPro:  strings.TrimSpace(proPlanID),
		entitlements.PlanPlus: strings.TrimSpace(plusPlanID),
	}}
}

// PlanID returns the configured PayPal plan id for a plan code.
func (c PlanCatalog) PlanID(p entitlements.Plan) (string, bool) {
	id := c.ids[p]
	return id, id != ""
}

// PlanCode resolves a PayPal plan id. Tiers are checked from highest to lowest
// so a misconfigured duplicate id resolves to the higher tier.
func (c PlanCatalog) PlanCode(planID string) (entitlements.Plan, bool) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return "", false
	}
	for _, p := range entitlements.Plans {
		if c.ids[p] == planID {
			return p, true
		}
	}
	return "", false
}

// resolvePlan picks the plan granted by an activation: the mapped PayPal plan
// id first, then the plan named in custom_id, then the highest tier.
func (c PlanCatalog) resolvePlan(planID string, customPlan entitlements.Plan) entitlements.Plan {
	if p, ok := c.PlanCode(planID); ok {
		return p
	}
	if customPlan != "" {
		return customPlan
	}
	return entitlements.Highest()
}
