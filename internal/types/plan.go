package types

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionPlan is the commercial plan a tenant subscribes to
type SubscriptionPlan string

const (
	SubscriptionPlanFree    SubscriptionPlan = "FREE"
	SubscriptionPlanBasic   SubscriptionPlan = "BASIC"
	SubscriptionPlanPremium SubscriptionPlan = "PREMIUM"
)

// planOrder defines the upgrade ordering of plans. A change to a plan with a
// higher index is an upgrade, lower is a downgrade, equal is lateral.
var planOrder = []SubscriptionPlan{
	SubscriptionPlanFree,
	SubscriptionPlanBasic,
	SubscriptionPlanPremium,
}

func (p SubscriptionPlan) String() string {
	return string(p)
}

func (p SubscriptionPlan) Validate() error {
	if !lo.Contains(planOrder, p) {
		return ierr.NewError("invalid subscription plan").
			WithHint("Please provide a valid subscription plan").
			WithReportableDetails(map[string]any{
				"allowed": planOrder,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Rank returns the position of the plan in the upgrade order, or -1 for an
// unknown plan.
func (p SubscriptionPlan) Rank() int {
	return lo.IndexOf(planOrder, p)
}

// PlanChangeType classifies a plan change relative to the current plan
type PlanChangeType string

const (
	PlanChangeUpgrade   PlanChangeType = "UPGRADE"
	PlanChangeDowngrade PlanChangeType = "DOWNGRADE"
	PlanChangeLateral   PlanChangeType = "LATERAL"
)

// ClassifyPlanChange compares two plans by their position in the plan order
func ClassifyPlanChange(current, next SubscriptionPlan) PlanChangeType {
	switch {
	case next.Rank() > current.Rank():
		return PlanChangeUpgrade
	case next.Rank() < current.Rank():
		return PlanChangeDowngrade
	default:
		return PlanChangeLateral
	}
}
