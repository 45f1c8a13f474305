package subscription

import (
	"slices"

	"sovereign-chat/internal/config"
)

// Entitlements is what the effective plan grants right now.
type Entitlements struct {
	Plan Plan
	// MonthlyMessages is the user-message quota per calendar month; 0 is unlimited.
	MonthlyMessages int
	AllowedModels   []string
	// Unlimited is set for the sovereign user, who bypasses plan checks.
	Unlimited bool
}

// AllowsModel reports whether model may be used under these entitlements.
func (e Entitlements) AllowsModel(model string) bool {
	if e.Unlimited || len(e.AllowedModels) == 0 || model == "" {
		return true
	}
	return slices.Contains(e.AllowedModels, model)
}

// EffectivePlan is the plan a subscription currently grants. Only ACTIVE
// subscriptions grant their paid plan; every other state falls back to FREE.
// A stored SOVEREIGN plan grants nothing unless the user is sovereign now.
func EffectivePlan(sub *Subscription, sovereign bool) Plan {
	if sovereign {
		return PlanSovereign
	}
	if sub == nil || sub.Status != StatusActive || sub.Plan == PlanSovereign {
		return PlanFree
	}
	return sub.Plan
}

func entitlementsFor(catalog *config.PlanCatalog, plan Plan) Entitlements {
	if plan == PlanSovereign {
		return Entitlements{Plan: plan, Unlimited: true}
	}
	def, ok := catalog.Plan(string(plan))
	if !ok {
		def, _ = catalog.Plan(config.PlanFree)
		plan = PlanFree
	}
	return Entitlements{
		Plan:            plan,
		MonthlyMessages: def.MonthlyMessages,
		AllowedModels:   def.AllowedModels,
	}
}
