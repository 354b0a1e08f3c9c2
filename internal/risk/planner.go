package risk

import (
	"fmt"

	"NiftySignal/internal/model"

	"github.com/shopspring/decimal"
)

// StopLossPct maps each fixed appetite to its stop-loss fraction of price.
var StopLossPct = map[model.RiskAppetite]float64{
	model.RiskLow:      0.02,
	model.RiskMedium:   0.05,
	model.RiskModerate: 0.05,
	model.RiskHigh:     0.10,
}

const (
	// RewardMultiple is the reward:risk ratio used for exit targets.
	RewardMultiple = 3
	// ATRMultiple is how many ATRs below the recent low the ATR stop sits.
	ATRMultiple = 2
	// FallbackRiskReward is reported when the stop is not below the entry.
	FallbackRiskReward = 2.0
	// TimeHorizon is the holding period the plans are sized for.
	TimeHorizon = "1-2 weeks"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// PlanFromInput parses a raw appetite string before planning, so that an
// unknown appetite is reported on the plan instead of being dropped.
func PlanFromInput(price float64, atr, recentLow model.Optional, appetite string, custom *model.CustomRisk) model.RiskPlan {
	parsed, defaulted := model.ParseRiskAppetite(appetite)
	plan := Plan(price, atr, recentLow, parsed, custom)
	if defaulted {
		plan.AppetiteDefaulted = true
		plan.Note = fmt.Sprintf("unknown risk appetite %q, using medium (5%%)", appetite)
	}
	return plan
}

// Plan computes stop-loss and exit target for a long entry at price.
//
// Custom appetites use the caller's percentages directly. Fixed appetites
// use their stop percentage with a 3:1 exit, unless ATR and the recent low
// are known, in which case the stop is the higher of the ATR stop and the
// percentage stop and the exit is three times that risk above entry.
func Plan(price float64, atr, recentLow model.Optional, appetite model.RiskAppetite, custom *model.CustomRisk) model.RiskPlan {
	plan := model.RiskPlan{
		EntryPrice:  round(decimal.NewFromFloat(price)),
		Appetite:    appetite,
		TimeHorizon: TimeHorizon,
	}
	p := decimal.NewFromFloat(price)

	if appetite == model.RiskCustom {
		if validCustom(custom) {
			sl := decimal.NewFromFloat(custom.StopLossPct).Div(hundred)
			ex := decimal.NewFromFloat(custom.ExitTargetPct).Div(hundred)
			plan.Method = model.MethodCustom
			plan.StopLossPct = custom.StopLossPct
			return finish(plan, p, p.Mul(one.Sub(sl)), p.Mul(one.Add(ex)))
		}
		plan.Appetite = model.RiskMedium
		plan.AppetiteDefaulted = true
		plan.Note = "custom risk needs stop-loss between 0 and 100% and a positive exit target, using medium (5%)"
		appetite = model.RiskMedium
	}

	pctF, ok := StopLossPct[appetite]
	if !ok {
		pctF = StopLossPct[model.RiskMedium]
		plan.Appetite = model.RiskMedium
		plan.AppetiteDefaulted = true
		plan.Note = fmt.Sprintf("unknown risk appetite %q, using medium (5%%)", appetite)
	}
	pct := decimal.NewFromFloat(pctF)
	plan.StopLossPct = pct.Mul(hundred).InexactFloat64()
	pctStop := p.Mul(one.Sub(pct))

	atrV, atrOK := atr.Get()
	lowV, lowOK := recentLow.Get()
	if atrOK && lowOK && atrV > 0 && lowV > 0 {
		atrStop := decimal.NewFromFloat(lowV).Sub(decimal.NewFromFloat(atrV).Mul(decimal.NewFromInt(ATRMultiple)))
		stop := decimal.Max(atrStop, pctStop)
		exit := p.Add(p.Sub(stop).Mul(decimal.NewFromInt(RewardMultiple)))
		plan.Method = model.MethodATR
		return finish(plan, p, stop, exit)
	}

	plan.Method = model.MethodPercentage
	exit := p.Mul(one.Add(pct.Mul(decimal.NewFromInt(RewardMultiple))))
	return finish(plan, p, pctStop, exit)
}

func finish(plan model.RiskPlan, price, stop, exit decimal.Decimal) model.RiskPlan {
	stop = stop.Round(2)
	exit = exit.Round(2)
	profit := exit.Sub(price.Round(2))

	plan.StopLoss = stop.InexactFloat64()
	plan.ExitTarget = exit.InexactFloat64()
	plan.TargetProfit = profit.InexactFloat64()

	risk := price.Round(2).Sub(stop)
	if risk.IsPositive() {
		plan.RiskRewardRatio = profit.Div(risk).Round(2).InexactFloat64()
	} else {
		plan.RiskRewardRatio = FallbackRiskReward
	}
	return plan
}

func validCustom(c *model.CustomRisk) bool {
	return c != nil && c.StopLossPct > 0 && c.StopLossPct < 100 && c.ExitTargetPct > 0
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
