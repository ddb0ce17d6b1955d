package analysis

// ParameterKey identifies one of the six qualitative campaign parameters
// the AI estimates and the calculator exposes as sliders.
type ParameterKey string

const (
	ParamBrandAwareness    ParameterKey = "brand_awareness"
	ParamMarketSaturation  ParameterKey = "market_saturation"
	ParamCampaignGoal      ParameterKey = "campaign_goal"
	ParamTargetAudience    ParameterKey = "target_audience"
	ParamProductComplexity ParameterKey = "product_complexity"
	ParamMessageComplexity ParameterKey = "message_complexity"
)

// ParameterKeys is the fixed parameter set in canonical order.
var ParameterKeys = [...]ParameterKey{
	ParamBrandAwareness,
	ParamMarketSaturation,
	ParamCampaignGoal,
	ParamTargetAudience,
	ParamProductComplexity,
	ParamMessageComplexity,
}

const (
	ParamValueMin = -2.0
	ParamValueMax = 2.0

	DefaultInsight = "insight unavailable"
	DefaultSource  = "AI analysis"

	// DefaultTACapacityRF is assumed when the AI omits the reach/frequency
	// capacity of the target audience or reports a non-positive one.
	DefaultTACapacityRF = 1_000_000.0
)

// ParameterEstimate is one AI-estimated parameter with its supporting
// rationale. Value is always within [ParamValueMin, ParamValueMax].
type ParameterEstimate struct {
	ID      ParameterKey `json:"id"`
	Value   float64      `json:"value"`
	Insight string       `json:"insight"`
	Source  string       `json:"source"`
}

// KPIBenchmarks holds the per-goal base KPI rates. Each field is a
// fraction in [0, 1].
type KPIBenchmarks struct {
	AwarenessTOMBase        float64 `json:"awareness_tom_base"`
	ConsiderationSearchBase float64 `json:"consideration_search_base"`
	ConversionUpliftBase    float64 `json:"conversion_uplift_base"`
	RetentionLTVBase        float64 `json:"retention_ltv_base"`
}

// DefaultKPIBenchmarks returns the fallback rates used when the AI does
// not supply benchmarks.
func DefaultKPIBenchmarks() KPIBenchmarks {
	return KPIBenchmarks{
		AwarenessTOMBase:        0.15,
		ConsiderationSearchBase: 0.25,
		ConversionUpliftBase:    0.08,
		RetentionLTVBase:        0.04,
	}
}

// SliderParams maps each parameter key to its current slider value.
// It is the shared currency between the AI path and manual entry.
type SliderParams map[ParameterKey]float64

// Sum adds the six parameter values. Missing keys count as zero.
func (p SliderParams) Sum() float64 {
	total := 0.0
	for _, k := range ParameterKeys {
		total += p[k]
	}
	return total
}

// Clone returns an independent copy with every canonical key present.
func (p SliderParams) Clone() SliderParams {
	out := make(SliderParams, len(ParameterKeys))
	for _, k := range ParameterKeys {
		out[k] = p[k]
	}
	return out
}

// ZeroSliderParams returns all six parameters at their neutral value.
func ZeroSliderParams() SliderParams {
	out := make(SliderParams, len(ParameterKeys))
	for _, k := range ParameterKeys {
		out[k] = 0
	}
	return out
}

// AnalysisResult is the validated output of Normalize: all six
// parameters present and clamped, capacity and benchmarks defaulted.
type AnalysisResult struct {
	Parameters        map[ParameterKey]ParameterEstimate `json:"parameters"`
	TACapacityRF      float64                            `json:"ta_capacity_rf"`
	KPIBenchmarks     KPIBenchmarks                      `json:"kpi_benchmarks"`
	RecommendedBudget *float64                           `json:"recommended_budget,omitempty"`
	BudgetReasoning   string                             `json:"budget_reasoning,omitempty"`
}

// SliderValues projects the parameter estimates onto slider values.
func (r AnalysisResult) SliderValues() SliderParams {
	out := make(SliderParams, len(ParameterKeys))
	for _, k := range ParameterKeys {
		out[k] = r.Parameters[k].Value
	}
	return out
}
