package config

import (
	"testing"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlansConfig_PriceFor(t *testing.T) {
	cfg := GetDefaultConfig()

	basic, err := cfg.Plans.PriceFor(types.SubscriptionPlanBasic)
	require.NoError(t, err)
	assert.True(t, basic.MonthlyPrice.Equal(decimal.RequireFromString("29.99")))

	free, err := cfg.Plans.PriceFor(types.SubscriptionPlanFree)
	require.NoError(t, err)
	assert.True(t, free.MonthlyPrice.IsZero())

	_, err = cfg.Plans.PriceFor(types.SubscriptionPlan("ENTERPRISE"))
	assert.Error(t, err)
}

func TestDefaultConfig_AllPlansPriced(t *testing.T) {
	cfg := GetDefaultConfig()
	for _, plan := range []types.SubscriptionPlan{
		types.SubscriptionPlanFree,
		types.SubscriptionPlanBasic,
		types.SubscriptionPlanPremium,
	} {
		_, err := cfg.Plans.PriceFor(plan)
		assert.NoError(t, err, "plan %s must be priced", plan)
	}
}
