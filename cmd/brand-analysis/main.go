package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandlift/mediaplanner/internal/analysis"
	"github.com/brandlift/mediaplanner/internal/metrics"
	"github.com/brandlift/mediaplanner/internal/planner"
)

// brand-analysis runs one AI analysis for a campaign and prints the
// normalized parameters plus the derived metrics as JSON.
func main() {
	brand := flag.String("brand", "", "Brand name to analyze")
	budget := flag.Float64("budget", 500000, "Media budget in USD")
	goal := flag.String("goal", "awareness", "Campaign goal (awareness|consideration|conversion|retention)")
	flag.Parse()

	if *brand == "" {
		log.Fatal("missing required -brand")
	}
	if !metrics.KnownGoal(metrics.Goal(*goal)) {
		log.Fatalf("unknown goal %q", *goal)
	}

	caller, err := analysis.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("analyzing brand %q (budget=%.0f, goal=%s)", *brand, *budget, *goal)
	raw, err := caller.GenerateAnalysis(ctx, analysis.AnalysisRequest{
		BrandName:    *brand,
		Budget:       *budget,
		CampaignGoal: *goal,
	})
	if err != nil {
		log.Fatal(err)
	}

	session := planner.NewSession(planner.CampaignInputs{
		BrandName: *brand,
		Budget:    *budget,
		Goal:      metrics.Goal(*goal),
	})
	if _, err := session.ApplyRawAnalysis(raw); err != nil {
		log.Fatalf("analysis unusable (%s): %v", analysis.KindFromError(err), err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session.Snapshot()); err != nil {
		log.Fatal(err)
	}
}
