package analysis

import (
	"testing"
)

func TestNormalizeClampsParameterValues(t *testing.T) {
	raw := map[string]any{
		"parameters": map[string]any{
			"brand_awareness":   map[string]any{"value": 5.0},
			"market_saturation": map[string]any{"value": -7.2},
			"campaign_goal":     map[string]any{"value": 0.37},
		},
	}
	res, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Parameters[ParamBrandAwareness].Value; got != 2.0 {
		t.Fatalf("expected clamp to 2.0, got %v", got)
	}
	if got := res.Parameters[ParamMarketSaturation].Value; got != -2.0 {
		t.Fatalf("expected clamp to -2.0, got %v", got)
	}
	if got := res.Parameters[ParamCampaignGoal].Value; got != 0.37 {
		t.Fatalf("in-range value must pass through, got %v", got)
	}
}

func TestNormalizeDefaultsMissingParameters(t *testing.T) {
	raw := map[string]any{"parameters": map[string]any{}}
	res, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Parameters) != len(ParameterKeys) {
		t.Fatalf("expected all %d parameters, got %d", len(ParameterKeys), len(res.Parameters))
	}
	est := res.Parameters[ParamTargetAudience]
	if est.Value != 0 {
		t.Fatalf("missing parameter value must default to 0, got %v", est.Value)
	}
	if est.Insight != DefaultInsight {
		t.Fatalf("unexpected insight default: %q", est.Insight)
	}
	if est.Source != DefaultSource {
		t.Fatalf("unexpected source default: %q", est.Source)
	}
}

func TestNormalizeNonNumericValueDefaultsToZero(t *testing.T) {
	raw := map[string]any{
		"parameters": map[string]any{
			"brand_awareness": map[string]any{"value": "very high", "insight": "kept"},
		},
	}
	res, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	est := res.Parameters[ParamBrandAwareness]
	if est.Value != 0 {
		t.Fatalf("non-numeric value must default to 0, got %v", est.Value)
	}
	if est.Insight != "kept" {
		t.Fatalf("insight should survive a bad value, got %q", est.Insight)
	}
}

func TestNormalizeTACapacityDefaults(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  map[string]any
		want float64
	}{
		{"absent", map[string]any{"parameters": map[string]any{}}, DefaultTACapacityRF},
		{"zero", map[string]any{"parameters": map[string]any{}, "ta_capacity_rf": 0.0}, DefaultTACapacityRF},
		{"negative", map[string]any{"parameters": map[string]any{}, "ta_capacity_rf": -5.0}, DefaultTACapacityRF},
		{"valid", map[string]any{"parameters": map[string]any{}, "ta_capacity_rf": 250000.0}, 250000.0},
	} {
		res, err := Normalize(tc.raw)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.TACapacityRF != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, res.TACapacityRF)
		}
	}
}

func TestNormalizeBenchmarkDefaultsAndClamp(t *testing.T) {
	res, err := Normalize(map[string]any{"parameters": map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.KPIBenchmarks != DefaultKPIBenchmarks() {
		t.Fatalf("expected default benchmarks, got %+v", res.KPIBenchmarks)
	}

	res, err = Normalize(map[string]any{
		"parameters": map[string]any{},
		"kpi_benchmarks": map[string]any{
			"awareness_tom_base": 1.7,
			"retention_ltv_base": -0.3,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.KPIBenchmarks.AwarenessTOMBase != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", res.KPIBenchmarks.AwarenessTOMBase)
	}
	if res.KPIBenchmarks.RetentionLTVBase != 0.0 {
		t.Fatalf("expected clamp to 0.0, got %v", res.KPIBenchmarks.RetentionLTVBase)
	}
	// Unspecified fields keep their defaults.
	if res.KPIBenchmarks.ConversionUpliftBase != 0.08 {
		t.Fatalf("expected default 0.08, got %v", res.KPIBenchmarks.ConversionUpliftBase)
	}
}

func TestNormalizeRecommendedBudgetFiltering(t *testing.T) {
	res, err := Normalize(map[string]any{
		"parameters":         map[string]any{},
		"recommended_budget": -100.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RecommendedBudget != nil {
		t.Fatal("non-positive recommended budget must be dropped")
	}

	res, err = Normalize(map[string]any{
		"parameters":         map[string]any{},
		"recommended_budget": 750000.0,
		"budget_reasoning":   "category norms",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RecommendedBudget == nil || *res.RecommendedBudget != 750000.0 {
		t.Fatalf("expected recommended budget 750000, got %v", res.RecommendedBudget)
	}
	if res.BudgetReasoning != "category norms" {
		t.Fatalf("unexpected budget reasoning: %q", res.BudgetReasoning)
	}
}

func TestNormalizeMissingParametersKind(t *testing.T) {
	raw := map[string]any{"content": `{"summary": "an object without the field"}`, "parameters_like": true}
	_, err := Normalize(raw)
	if KindFromError(err) != KindUnrecognizedShape {
		t.Fatalf("expected unrecognized_shape, got %v", err)
	}

	// Chat completion whose payload object lacks parameters.
	raw = map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": map[string]any{"summary": "x"}}},
		},
	}
	_, err = Normalize(raw)
	if KindFromError(err) != KindMissingParameters {
		t.Fatalf("expected missing_parameters, got %v", err)
	}
}

func TestNormalizeToolReportedFailure(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"string error", map[string]any{"error": "rate limited upstream"}, "rate limited upstream"},
		{"object error", map[string]any{"error": map[string]any{"message": "bad request"}}, "bad request"},
		{"success false", map[string]any{"success": false, "parameters": map[string]any{}}, "tool reported success=false"},
		{"ok false", map[string]any{"ok": false}, "tool reported ok=false"},
	} {
		_, err := Normalize(tc.raw)
		ne, isTyped := err.(*NormalizationError)
		if !isTyped || ne.Kind != KindToolReportedFailure {
			t.Fatalf("%s: expected tool_reported_failure, got %v", tc.name, err)
		}
		if ne.Message != tc.want {
			t.Fatalf("%s: expected message %q, got %q", tc.name, tc.want, ne.Message)
		}
	}
}

func TestNormalizeEmptyErrorFieldIsNotFailure(t *testing.T) {
	raw := map[string]any{"error": "", "parameters": map[string]any{}}
	if _, err := Normalize(raw); err != nil {
		t.Fatalf("empty error string must not flag failure: %v", err)
	}
}

func TestSliderValuesProjection(t *testing.T) {
	res, err := Normalize(map[string]any{
		"parameters": map[string]any{
			"brand_awareness": map[string]any{"value": 1.2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	sliders := res.SliderValues()
	if len(sliders) != len(ParameterKeys) {
		t.Fatalf("expected %d slider values, got %d", len(ParameterKeys), len(sliders))
	}
	if sliders[ParamBrandAwareness] != 1.2 {
		t.Fatalf("unexpected slider value: %v", sliders[ParamBrandAwareness])
	}
	if sliders[ParamMessageComplexity] != 0 {
		t.Fatalf("missing parameters project to 0, got %v", sliders[ParamMessageComplexity])
	}
}
