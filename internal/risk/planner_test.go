package risk

import (
	"math"
	"testing"

	"NiftySignal/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestPlan_Custom(t *testing.T) {
	plan := Plan(1000, model.None(), model.None(), model.RiskCustom, &model.CustomRisk{StopLossPct: 3, ExitTargetPct: 9})

	assert.Equal(t, 970.0, plan.StopLoss)
	assert.Equal(t, 1090.0, plan.ExitTarget)
	assert.Equal(t, 90.0, plan.TargetProfit)
	assert.Equal(t, 3.0, plan.RiskRewardRatio)
	assert.Equal(t, model.MethodCustom, plan.Method)
	assert.False(t, plan.AppetiteDefaulted)
}

func TestPlan_CustomWithoutParametersFallsBackToMedium(t *testing.T) {
	plan := Plan(200, model.None(), model.None(), model.RiskCustom, nil)

	assert.Equal(t, model.RiskMedium, plan.Appetite)
	assert.True(t, plan.AppetiteDefaulted)
	assert.NotEmpty(t, plan.Note)
	assert.Equal(t, 190.0, plan.StopLoss)
	assert.Equal(t, 230.0, plan.ExitTarget)
}

func TestPlan_Percentage(t *testing.T) {
	tests := []struct {
		appetite model.RiskAppetite
		stop     float64
		exit     float64
	}{
		{model.RiskLow, 98, 106},
		{model.RiskMedium, 95, 115},
		{model.RiskModerate, 95, 115},
		{model.RiskHigh, 90, 130},
	}
	for _, tt := range tests {
		t.Run(string(tt.appetite), func(t *testing.T) {
			plan := Plan(100, model.None(), model.None(), tt.appetite, nil)
			assert.Equal(t, tt.stop, plan.StopLoss)
			assert.Equal(t, tt.exit, plan.ExitTarget)
			assert.Equal(t, 3.0, plan.RiskRewardRatio)
			assert.Equal(t, model.MethodPercentage, plan.Method)
			assert.Equal(t, TimeHorizon, plan.TimeHorizon)
		})
	}
}

func TestPlan_ATRStopTakesTheHigherStop(t *testing.T) {
	tests := []struct {
		name      string
		atr       float64
		recentLow float64
	}{
		{"percentage stop wins", 2, 98},
		{"atr stop wins", 1, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Plan(100, model.Some(tt.atr), model.Some(tt.recentLow), model.RiskMedium, nil)

			want := math.Max(tt.recentLow-2*tt.atr, 100*(1-0.05))
			assert.Equal(t, want, plan.StopLoss)
			assert.Equal(t, 100+3*(100-want), plan.ExitTarget)
			assert.Equal(t, model.MethodATR, plan.Method)
			assert.Less(t, plan.StopLoss, plan.EntryPrice)
			assert.Greater(t, plan.ExitTarget, plan.EntryPrice)
		})
	}
}

func TestPlan_StopAboveEntryUsesFallbackRatio(t *testing.T) {
	plan := Plan(100, model.Some(1), model.Some(150), model.RiskMedium, nil)

	assert.Equal(t, 148.0, plan.StopLoss)
	assert.Equal(t, FallbackRiskReward, plan.RiskRewardRatio)
}

func TestPlanFromInput_UnknownAppetite(t *testing.T) {
	plan := PlanFromInput(100, model.None(), model.None(), "yolo", nil)

	assert.Equal(t, model.RiskMedium, plan.Appetite)
	assert.True(t, plan.AppetiteDefaulted)
	assert.Contains(t, plan.Note, "yolo")
	assert.Equal(t, 95.0, plan.StopLoss)
}

func TestPlan_BuyInvariant(t *testing.T) {
	prices := []float64{12.35, 99.9, 1000, 2875.4}
	appetites := []model.RiskAppetite{model.RiskLow, model.RiskMedium, model.RiskHigh}
	for _, price := range prices {
		for _, appetite := range appetites {
			for _, withATR := range []bool{false, true} {
				atr, low := model.None(), model.None()
				if withATR {
					atr, low = model.Some(price*0.015), model.Some(price*0.97)
				}
				plan := Plan(price, atr, low, appetite, nil)
				assert.Less(t, plan.StopLoss, plan.EntryPrice, "price %.2f %s atr=%v", price, appetite, withATR)
				assert.Greater(t, plan.ExitTarget, plan.EntryPrice, "price %.2f %s atr=%v", price, appetite, withATR)
				assert.Greater(t, plan.RiskRewardRatio, 0.0)
			}
		}
	}
}
