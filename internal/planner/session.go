// Package planner owns the mutable state of one calculator session:
// campaign inputs, slider positions, and the last good AI analysis.
package planner

import (
	"fmt"
	"sync"

	"github.com/brandlift/mediaplanner/internal/analysis"
	"github.com/brandlift/mediaplanner/internal/metrics"
)

// CampaignInputs are the user-entered campaign basics.
type CampaignInputs struct {
	BrandName string       `json:"brand_name"`
	Budget    float64      `json:"budget"`
	Goal      metrics.Goal `json:"campaign_goal"`
}

// Snapshot is an immutable copy of session state for rendering and
// persistence.
type Snapshot struct {
	Inputs   CampaignInputs           `json:"inputs"`
	Params   analysis.SliderParams    `json:"params"`
	Analysis *analysis.AnalysisResult `json:"analysis,omitempty"`
	Metrics  metrics.DerivedMetrics   `json:"metrics"`
}

// Session holds calculator state shared by HTTP handlers. All methods
// are safe for concurrent use. Metrics are recomputed eagerly on every
// mutation so reads never observe stale numbers.
type Session struct {
	mu      sync.RWMutex
	inputs  CampaignInputs
	params  analysis.SliderParams
	result  *analysis.AnalysisResult
	metrics metrics.DerivedMetrics
}

func NewSession(inputs CampaignInputs) *Session {
	s := &Session{
		inputs: inputs,
		params: analysis.ZeroSliderParams(),
	}
	s.recompute()
	return s
}

// SetSliders replaces the manual slider positions. Values outside the
// parameter range are rejected rather than clamped: manual entry has a
// UI with hard stops, so an out-of-range value is a caller bug.
func (s *Session) SetSliders(params analysis.SliderParams) error {
	for _, k := range analysis.ParameterKeys {
		v := params[k]
		if v < analysis.ParamValueMin || v > analysis.ParamValueMax {
			return fmt.Errorf("slider %s out of range: %v", k, v)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params.Clone()
	s.recompute()
	return nil
}

func (s *Session) SetBudget(budget float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Budget = budget
	s.recompute()
}

func (s *Session) SetGoal(goal metrics.Goal) error {
	if !metrics.KnownGoal(goal) {
		return fmt.Errorf("unknown campaign goal %q", goal)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Goal = goal
	s.recompute()
	return nil
}

func (s *Session) SetBrandName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.BrandName = name
	s.recompute()
}

// ApplyRawAnalysis normalizes a raw AI payload and, on success,
// replaces the stored analysis wholesale and syncs the sliders to the
// AI estimates. On failure the session is left exactly as it was and
// the typed normalization error is returned: a failed AI call never
// degrades manually entered state.
func (s *Session) ApplyRawAnalysis(raw any) (analysis.AnalysisResult, error) {
	result, err := analysis.Normalize(raw)
	if err != nil {
		return analysis.AnalysisResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &result
	s.params = result.SliderValues()
	s.recompute()
	return result, nil
}

// Reset clears the analysis and zeroes the sliders. Campaign inputs
// survive a reset.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
	s.params = analysis.ZeroSliderParams()
	s.recompute()
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Inputs:  s.inputs,
		Params:  s.params.Clone(),
		Metrics: s.metrics,
	}
	if s.result != nil {
		cp := *s.result
		cp.Parameters = make(map[analysis.ParameterKey]analysis.ParameterEstimate, len(s.result.Parameters))
		for k, v := range s.result.Parameters {
			cp.Parameters[k] = v
		}
		snap.Analysis = &cp
	}
	return snap
}

// Metrics returns the current derived metrics.
func (s *Session) Metrics() metrics.DerivedMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// recompute must be called with the write lock held.
func (s *Session) recompute() {
	bench := analysis.DefaultKPIBenchmarks()
	capacity := analysis.DefaultTACapacityRF
	if s.result != nil {
		bench = s.result.KPIBenchmarks
		capacity = s.result.TACapacityRF
	}
	s.metrics = metrics.Compute(s.inputs.Budget, s.inputs.Goal, s.params, bench, capacity)
}
