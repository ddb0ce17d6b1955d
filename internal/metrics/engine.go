// Package metrics is the pure computation core of the calculator.
// Every function is deterministic, total over its float inputs, and
// returns no error: out-of-domain inputs produce guarded zero results
// instead.
package metrics

import (
	"math"

	"github.com/brandlift/mediaplanner/internal/analysis"
)

// Goal is the campaign objective selected by the planner.
type Goal string

const (
	GoalAwareness     Goal = "awareness"
	GoalConsideration Goal = "consideration"
	GoalConversion    Goal = "conversion"
	GoalRetention     Goal = "retention"
)

// KnownGoal reports whether g is one of the four supported objectives.
func KnownGoal(g Goal) bool {
	switch g {
	case GoalAwareness, GoalConsideration, GoalConversion, GoalRetention:
		return true
	}
	return false
}

const (
	FrequencyMin = 1.0
	FrequencyMax = 15.0

	// referenceBudget anchors the diminishing-returns sqrt curve.
	referenceBudget = 500_000.0
	// cpmRate is the assumed cost per thousand impressions in USD.
	cpmRate = 400.0

	coverageDamping     = 0.08
	tomScale            = 3.5
	ltvScale            = 7.0
	tomFrequencyLift    = 0.08
	ltvFrequencyLift    = 0.05
	saturationDragRate  = 0.1
	budgetQualityCeil   = 2.0
	defaultAwarenessTOM = 0.15
)

// DerivedMetrics is the full set of computed outputs. TOMOrLTV holds
// the headline uplift: LTV growth for retention campaigns, TOM/uplift
// for everything else. LTVGrowth is always populated for diagnostics.
type DerivedMetrics struct {
	Frequency float64 `json:"frequency"`
	Coverage  float64 `json:"coverage"`
	TOMOrLTV  float64 `json:"tom_or_ltv"`
	LTVGrowth float64 `json:"ltv_growth"`
}

// DisplayMetric is the labeled headline pair a renderer shows.
type DisplayMetric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Frequency derives the effective contact frequency from the six
// parameter values: 1 plus their sum, clamped to [1, 15].
func Frequency(params analysis.SliderParams) float64 {
	return clamp(1+params.Sum(), FrequencyMin, FrequencyMax)
}

// BaseKPI selects the per-goal base rate from the benchmarks. Unknown
// or empty goals fall back to the awareness default.
func BaseKPI(goal Goal, bench analysis.KPIBenchmarks) float64 {
	switch goal {
	case GoalAwareness:
		return bench.AwarenessTOMBase
	case GoalConsideration:
		return bench.ConsiderationSearchBase
	case GoalConversion:
		return bench.ConversionUpliftBase
	case GoalRetention:
		return bench.RetentionLTVBase
	default:
		return defaultAwarenessTOM
	}
}

func tomGoalMultiplier(goal Goal) float64 {
	switch goal {
	case GoalAwareness:
		return 1.0
	case GoalConsideration:
		return 0.7
	case GoalConversion:
		return 0.4
	case GoalRetention:
		return 0.2
	default:
		return 1.0
	}
}

func ltvGoalMultiplier(goal Goal) float64 {
	switch goal {
	case GoalAwareness:
		return 0.3
	case GoalConsideration:
		return 0.5
	case GoalConversion:
		return 0.8
	case GoalRetention:
		return 1.0
	default:
		return 0.5
	}
}

// TOMUplift computes the top-of-mind / uplift score in percentage
// points. Zero when the budget is non-positive or the goal is unset.
func TOMUplift(goal Goal, budget, frequency, baseKPI float64) float64 {
	if budget <= 0 || goal == "" {
		return 0
	}
	frequencyMult := 1 + (frequency-1)*tomFrequencyLift
	budgetMult := math.Sqrt(budget / referenceBudget)
	return baseKPI * frequencyMult * budgetMult * tomGoalMultiplier(goal) * 100 * tomScale
}

// LTVGrowth computes projected lifetime-value growth in percentage
// points. Zero when the budget is non-positive.
func LTVGrowth(goal Goal, budget, frequency, marketSaturation, retentionBase float64) float64 {
	if budget <= 0 {
		return 0
	}
	frequencyMult := 1 + (frequency-1)*ltvFrequencyLift
	competitionCorrection := 1 - marketSaturation*saturationDragRate
	budgetQuality := math.Min(1+math.Log10(budget/1_000_000), budgetQualityCeil)
	return retentionBase * ltvGoalMultiplier(goal) * frequencyMult * competitionCorrection * budgetQuality * 100 * ltvScale
}

// Coverage computes the share of the target audience reached at the
// derived frequency, as a damped percentage. Zero when the budget,
// frequency, or audience capacity leaves the domain.
func Coverage(budget, frequency, taCapacity float64) float64 {
	if budget <= 0 || frequency <= 0 || taCapacity <= 0 {
		return 0
	}
	impressions := budget / cpmRate * 1000
	reached := impressions / frequency
	return reached / taCapacity * 100 * coverageDamping
}

// Compute evaluates all four metrics for one set of inputs.
func Compute(budget float64, goal Goal, params analysis.SliderParams, bench analysis.KPIBenchmarks, taCapacity float64) DerivedMetrics {
	f := Frequency(params)
	m := DerivedMetrics{
		Frequency: f,
		Coverage:  Coverage(budget, f, taCapacity),
		TOMOrLTV:  TOMUplift(goal, budget, f, BaseKPI(goal, bench)),
		LTVGrowth: LTVGrowth(goal, budget, f, params[analysis.ParamMarketSaturation], bench.RetentionLTVBase),
	}
	if goal == GoalRetention {
		m.TOMOrLTV = m.LTVGrowth
	}
	return m
}

// Display selects the headline metric for the given goal.
func (m DerivedMetrics) Display(goal Goal) DisplayMetric {
	if goal == GoalRetention {
		return DisplayMetric{Label: "ltv_growth", Value: m.LTVGrowth}
	}
	return DisplayMetric{Label: "tom_uplift", Value: m.TOMOrLTV}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
