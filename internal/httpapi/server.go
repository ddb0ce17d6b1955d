package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/brandlift/mediaplanner/internal/analysis"
	"github.com/brandlift/mediaplanner/internal/auth"
	"github.com/brandlift/mediaplanner/internal/history"
	"github.com/brandlift/mediaplanner/internal/metrics"
	"github.com/brandlift/mediaplanner/internal/planner"
)

// Server exposes the calculator over HTTP. The history store and the
// auth verifier are optional: without them the calculator runs in
// anonymous mode and nothing is persisted.
type Server struct {
	session  *planner.Session
	caller   analysis.LLMCaller
	store    *history.Store
	verifier *auth.Verifier
	tracer   trace.Tracer
}

func NewServer(session *planner.Session, caller analysis.LLMCaller, store *history.Store, verifier *auth.Verifier) http.Handler {
	s := &Server{
		session:  session,
		caller:   caller,
		store:    store,
		verifier: verifier,
		tracer:   otel.Tracer("mediaplanner/httpapi"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/v1/session", s.handleSession)
	mux.HandleFunc("/v1/session/sliders", s.handleSliders)
	mux.HandleFunc("/v1/session/reset", s.handleReset)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// writeNormalizationError maps the typed normalization kinds onto HTTP
// statuses: a failure the collaborator reported itself is an upstream
// problem, everything else is an unprocessable response body.
func writeNormalizationError(w http.ResponseWriter, err error) {
	kind := analysis.KindFromError(err)
	if kind == "" {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	status := http.StatusUnprocessableEntity
	if kind == analysis.KindToolReportedFailure {
		status = http.StatusBadGateway
	}
	writeError(w, status, string(kind), err.Error())
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	blob, err := readBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, dst)
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeSliders(raw map[string]float64) analysis.SliderParams {
	out := analysis.ZeroSliderParams()
	for k, v := range raw {
		out[analysis.ParameterKey(k)] = v
	}
	return out
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	ctx, span := s.tracer.Start(r.Context(), "httpapi.analyze")
	defer span.End()

	var req struct {
		BrandName    string  `json:"brand_name"`
		Budget       float64 `json:"budget"`
		CampaignGoal string  `json:"campaign_goal"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid json: "+err.Error())
		return
	}
	req.BrandName = strings.TrimSpace(req.BrandName)
	if req.BrandName == "" {
		writeError(w, http.StatusBadRequest, "validation", "brand_name is required")
		return
	}
	if req.Budget <= 0 {
		writeError(w, http.StatusBadRequest, "validation", "budget must be positive")
		return
	}
	goal := metrics.Goal(req.CampaignGoal)
	if !metrics.KnownGoal(goal) {
		writeError(w, http.StatusBadRequest, "validation", "unknown campaign_goal")
		return
	}
	span.SetAttributes(
		attribute.String("campaign.brand", req.BrandName),
		attribute.Float64("campaign.budget", req.Budget),
		attribute.String("campaign.goal", string(goal)),
	)

	s.session.SetBrandName(req.BrandName)
	s.session.SetBudget(req.Budget)
	if err := s.session.SetGoal(goal); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	raw, err := s.caller.GenerateAnalysis(ctx, analysis.AnalysisRequest{
		BrandName:    req.BrandName,
		Budget:       req.Budget,
		CampaignGoal: req.CampaignGoal,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "transport failure")
		writeError(w, http.StatusBadGateway, "transport", err.Error())
		return
	}

	result, err := s.session.ApplyRawAnalysis(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(analysis.KindFromError(err)))
		writeNormalizationError(w, err)
		return
	}

	snap := s.session.Snapshot()
	s.persistCalculation(r, snap)

	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"analysis": result,
		"metrics":  snap.Metrics,
		"headline": snap.Metrics.Display(goal),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	_, span := s.tracer.Start(r.Context(), "httpapi.metrics")
	defer span.End()

	var req struct {
		Budget       float64            `json:"budget"`
		CampaignGoal string             `json:"campaign_goal"`
		Sliders      map[string]float64 `json:"sliders"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid json: "+err.Error())
		return
	}
	goal := metrics.Goal(req.CampaignGoal)
	if req.CampaignGoal != "" && !metrics.KnownGoal(goal) {
		writeError(w, http.StatusBadRequest, "validation", "unknown campaign_goal")
		return
	}
	params := decodeSliders(req.Sliders)
	for _, k := range analysis.ParameterKeys {
		if params[k] < analysis.ParamValueMin || params[k] > analysis.ParamValueMax {
			writeError(w, http.StatusBadRequest, "validation", "slider "+string(k)+" out of range")
			return
		}
	}

	// Stateless compute, except benchmarks and audience capacity come
	// from the session's current analysis when one is loaded.
	bench := analysis.DefaultKPIBenchmarks()
	capacity := analysis.DefaultTACapacityRF
	if snap := s.session.Snapshot(); snap.Analysis != nil {
		bench = snap.Analysis.KPIBenchmarks
		capacity = snap.Analysis.TACapacityRF
	}

	m := metrics.Compute(req.Budget, goal, params, bench, capacity)
	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"metrics":  m,
		"headline": m.Display(goal),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, s.session.Snapshot())
}

func (s *Server) handleSliders(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPut) {
		return
	}
	var req struct {
		Sliders map[string]float64 `json:"sliders"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid json: "+err.Error())
		return
	}
	if err := s.session.SetSliders(decodeSliders(req.Sliders)); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	snap := s.session.Snapshot()
	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"metrics":  snap.Metrics,
		"headline": snap.Metrics.Display(snap.Inputs.Goal),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	s.session.Reset()
	writeJSON(w, 200, map[string]any{"ok": true, "session": s.session.Snapshot()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.verifier == nil || s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "history is not configured")
		return
	}
	claims, err := s.verifier.VerifyBearer(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	recs, err := s.store.ListByUser(claims.UserID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "calculations": recs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":      true,
		"history": s.store != nil,
		"auth":    s.verifier != nil,
	})
}

// persistCalculation saves the snapshot for an authenticated caller.
// Persistence never surfaces to the user: anonymous requests, invalid
// tokens, and failed writes are all logged and dropped.
func (s *Server) persistCalculation(r *http.Request, snap planner.Snapshot) {
	if s.store == nil || s.verifier == nil {
		return
	}
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		return
	}
	claims, err := s.verifier.VerifyBearer(header)
	if err != nil {
		log.Printf("history: skipping save, token rejected: %v", err)
		return
	}
	_, err = s.store.Save(history.Record{
		UserID:            claims.UserID,
		BrandName:         snap.Inputs.BrandName,
		Budget:            snap.Inputs.Budget,
		CampaignGoal:      string(snap.Inputs.Goal),
		BrandAwareness:    snap.Params[analysis.ParamBrandAwareness],
		MarketSaturation:  snap.Params[analysis.ParamMarketSaturation],
		GoalParam:         snap.Params[analysis.ParamCampaignGoal],
		TargetAudience:    snap.Params[analysis.ParamTargetAudience],
		ProductComplexity: snap.Params[analysis.ParamProductComplexity],
		MessageComplexity: snap.Params[analysis.ParamMessageComplexity],
		Frequency:         snap.Metrics.Frequency,
	})
	if err != nil {
		log.Printf("history: save failed for user %s: %v", claims.UserID, err)
	}
}
