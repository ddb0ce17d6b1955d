package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize converts a raw AI payload, in whatever envelope the model
// or transport wrapped it, into a validated AnalysisResult. It is a
// pure function of its input: no I/O, no retries. Failures come back
// as a *NormalizationError and never as a panic.
func Normalize(raw any) (AnalysisResult, error) {
	if msg, failed := toolFailure(raw); failed {
		return AnalysisResult{}, &NormalizationError{
			Kind:    KindToolReportedFailure,
			Message: msg,
		}
	}

	payload, err := extractPayload(raw)
	if err != nil {
		return AnalysisResult{}, err
	}

	rawParams, ok := payload["parameters"].(map[string]any)
	if !ok {
		return AnalysisResult{}, &NormalizationError{
			Kind:    KindMissingParameters,
			Message: "payload object has no parameters field",
		}
	}

	result := AnalysisResult{
		Parameters:    make(map[ParameterKey]ParameterEstimate, len(ParameterKeys)),
		TACapacityRF:  DefaultTACapacityRF,
		KPIBenchmarks: DefaultKPIBenchmarks(),
	}

	for _, key := range ParameterKeys {
		result.Parameters[key] = normalizeParameter(key, rawParams[string(key)])
	}

	if v, ok := asFloat(payload["ta_capacity_rf"]); ok && v > 0 {
		result.TACapacityRF = v
	}
	if rawBench, ok := payload["kpi_benchmarks"].(map[string]any); ok {
		result.KPIBenchmarks = normalizeBenchmarks(rawBench)
	}
	if v, ok := asFloat(payload["recommended_budget"]); ok && v > 0 {
		result.RecommendedBudget = &v
	}
	if s, ok := payload["budget_reasoning"].(string); ok {
		result.BudgetReasoning = strings.TrimSpace(s)
	}

	return result, nil
}

// toolFailure reports whether the envelope itself declares the call
// unsuccessful, and with what message.
func toolFailure(raw any) (string, bool) {
	env, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	switch e := env["error"].(type) {
	case string:
		if strings.TrimSpace(e) != "" {
			return strings.TrimSpace(e), true
		}
	case map[string]any:
		if msg, ok := e["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg), true
		}
		return "tool reported an error", true
	}
	for _, flag := range []string{"success", "ok"} {
		if v, present := env[flag]; present {
			if b, ok := v.(bool); ok && !b {
				return fmt.Sprintf("tool reported %s=false", flag), true
			}
		}
	}
	return "", false
}

func normalizeParameter(key ParameterKey, raw any) ParameterEstimate {
	est := ParameterEstimate{
		ID:      key,
		Value:   0,
		Insight: DefaultInsight,
		Source:  DefaultSource,
	}
	entry, ok := raw.(map[string]any)
	if !ok {
		return est
	}
	if v, ok := asFloat(entry["value"]); ok {
		est.Value = clamp(v, ParamValueMin, ParamValueMax)
	}
	if s, ok := entry["insight"].(string); ok && strings.TrimSpace(s) != "" {
		est.Insight = strings.TrimSpace(s)
	}
	if s, ok := entry["source"].(string); ok && strings.TrimSpace(s) != "" {
		est.Source = strings.TrimSpace(s)
	}
	return est
}

func normalizeBenchmarks(raw map[string]any) KPIBenchmarks {
	b := DefaultKPIBenchmarks()
	if v, ok := asFloat(raw["awareness_tom_base"]); ok {
		b.AwarenessTOMBase = clamp(v, 0, 1)
	}
	if v, ok := asFloat(raw["consideration_search_base"]); ok {
		b.ConsiderationSearchBase = clamp(v, 0, 1)
	}
	if v, ok := asFloat(raw["conversion_uplift_base"]); ok {
		b.ConversionUpliftBase = clamp(v, 0, 1)
	}
	if v, ok := asFloat(raw["retention_ltv_base"]); ok {
		b.RetentionLTVBase = clamp(v, 0, 1)
	}
	return b
}

// asFloat accepts the numeric types that survive JSON decoding and SDK
// plumbing. Strings are deliberately not coerced.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
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
