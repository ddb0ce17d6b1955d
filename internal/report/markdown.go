// Package report renders a calculator snapshot as a shareable media
// plan document: markdown first, then HTML/PDF via headless Chromium.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/brandlift/mediaplanner/internal/analysis"
	"github.com/brandlift/mediaplanner/internal/metrics"
	"github.com/brandlift/mediaplanner/internal/planner"
)

const Disclaimer = "This plan is a model-assisted estimate built from qualitative parameters and " +
	"category benchmarks. It is a planning aid, not a guarantee of campaign performance."

var parameterLabels = map[analysis.ParameterKey]string{
	analysis.ParamBrandAwareness:    "Brand Awareness",
	analysis.ParamMarketSaturation:  "Market Saturation",
	analysis.ParamCampaignGoal:      "Goal Fit",
	analysis.ParamTargetAudience:    "Target Audience",
	analysis.ParamProductComplexity: "Product Complexity",
	analysis.ParamMessageComplexity: "Message Complexity",
}

var headlineLabels = map[string]string{
	"tom_uplift": "Top-of-Mind / Uplift",
	"ltv_growth": "LTV Growth",
}

// BuildMarkdown renders the snapshot as a markdown media plan.
func BuildMarkdown(snap planner.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Media Plan: %s\n\n", sanitize(snap.Inputs.BrandName))
	fmt.Fprintf(&b, "- Budget: $%.0f\n", snap.Inputs.Budget)
	fmt.Fprintf(&b, "- Campaign Goal: %s\n", snap.Inputs.Goal)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	fmt.Fprintf(&b, "## Campaign Parameters\n\n")
	if snap.Analysis == nil {
		fmt.Fprintf(&b, "Parameters were entered manually; no AI analysis is attached.\n\n")
		fmt.Fprintf(&b, "| Parameter | Value |\n|-----------|-------|\n")
		for _, k := range analysis.ParameterKeys {
			fmt.Fprintf(&b, "| %s | %.2f |\n", parameterLabels[k], snap.Params[k])
		}
	} else {
		fmt.Fprintf(&b, "Each parameter is a deviation from the category average, from -2.0 (far below) to 2.0 (far above).\n\n")
		fmt.Fprintf(&b, "| Parameter | Value | Insight | Source |\n")
		fmt.Fprintf(&b, "|-----------|-------|---------|--------|\n")
		for _, k := range analysis.ParameterKeys {
			est := snap.Analysis.Parameters[k]
			fmt.Fprintf(&b, "| %s | %.2f | %s | %s |\n",
				parameterLabels[k], est.Value, sanitize(est.Insight), sanitize(est.Source))
		}
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Projected Outcomes\n\n")
	headline := snap.Metrics.Display(snap.Inputs.Goal)
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Effective Frequency | %.2f |\n", snap.Metrics.Frequency)
	fmt.Fprintf(&b, "| Audience Coverage | %.1f%% |\n", snap.Metrics.Coverage)
	fmt.Fprintf(&b, "| %s | %.1f pp |\n", headlineLabel(headline), headline.Value)
	if snap.Inputs.Goal != metrics.GoalRetention {
		fmt.Fprintf(&b, "| LTV Growth (secondary) | %.1f pp |\n", snap.Metrics.LTVGrowth)
	}
	fmt.Fprintf(&b, "\n")

	if snap.Analysis != nil && snap.Analysis.RecommendedBudget != nil {
		fmt.Fprintf(&b, "## Budget Recommendation\n\n")
		fmt.Fprintf(&b, "Suggested budget: $%.0f\n\n", *snap.Analysis.RecommendedBudget)
		if snap.Analysis.BudgetReasoning != "" {
			fmt.Fprintf(&b, "%s\n\n", sanitize(snap.Analysis.BudgetReasoning))
		}
	}

	return b.String()
}

func headlineLabel(d metrics.DisplayMetric) string {
	if label, ok := headlineLabels[d.Label]; ok {
		return label
	}
	return d.Label
}

// sanitize keeps free-form model text from breaking the markdown table
// layout.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
