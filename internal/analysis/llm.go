package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a senior media-planning analyst. You estimate qualitative campaign parameters for a brand from public knowledge and marketing fundamentals. Respond with strict JSON only."

const analysisSchemaPrompt = `Required JSON schema:
{
  "parameters": {
    "brand_awareness":    {"value": "float -2.0..2.0", "insight": "string", "source": "string"},
    "market_saturation":  {"value": "float -2.0..2.0", "insight": "string", "source": "string"},
    "campaign_goal":      {"value": "float -2.0..2.0", "insight": "string", "source": "string"},
    "target_audience":    {"value": "float -2.0..2.0", "insight": "string", "source": "string"},
    "product_complexity": {"value": "float -2.0..2.0", "insight": "string", "source": "string"},
    "message_complexity": {"value": "float -2.0..2.0", "insight": "string", "source": "string"}
  },
  "ta_capacity_rf": "float > 0, reachable audience size",
  "kpi_benchmarks": {
    "awareness_tom_base": "float 0..1",
    "consideration_search_base": "float 0..1",
    "conversion_uplift_base": "float 0..1",
    "retention_ltv_base": "float 0..1"
  },
  "recommended_budget": "float or null",
  "budget_reasoning": "string or null"
}`

type llmFailureClass int

const (
	failureNone llmFailureClass = iota
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

// AnalysisRequest describes the campaign the model should assess.
type AnalysisRequest struct {
	BrandName    string
	Budget       float64
	CampaignGoal string
}

// LLMCaller produces one raw analysis payload per call. The payload is
// returned undecoded past JSON syntax: shape interpretation belongs to
// Normalize, which runs exactly once per completed call.
type LLMCaller interface {
	GenerateAnalysis(ctx context.Context, req AnalysisRequest) (any, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey)}, nil
}

// GenerateAnalysis asks the model for the campaign parameter estimates.
// Transient transport failures (timeout, 429, 5xx) are retried up to
// three attempts with a short backoff; content problems are not retried
// here, the normalizer reports them as typed errors instead.
func (a *AnthropicCaller) GenerateAnalysis(ctx context.Context, req AnalysisRequest) (any, error) {
	prompt := buildAnalysisPrompt(req)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		text, err := a.generateText(ctx, prompt)
		if err != nil {
			lastErr = err
			class := classifyTransportError(err)
			if (class == failureTimeout || class == failureRateLimit || class == failureServer) && attempt < 3 {
				time.Sleep(backoffDelay(attempt))
				continue
			}
			return nil, fmt.Errorf("analysis transport failure: %w", err)
		}

		var decoded any
		if json.Unmarshal([]byte(strings.TrimSpace(text)), &decoded) == nil {
			return decoded, nil
		}
		// Not syntactically JSON at the top level: hand the raw text to
		// the normalizer, which knows about fences and prose wrapping.
		return text, nil
	}
	return nil, fmt.Errorf("analysis failed after retries: %w", lastErr)
}

func (a *AnthropicCaller) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   4096,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

func buildAnalysisPrompt(req AnalysisRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Estimate campaign parameters for the brand %q.\n", req.BrandName)
	fmt.Fprintf(&sb, "Planned media budget: %.0f USD. Campaign goal: %s.\n\n", req.Budget, req.CampaignGoal)
	sb.WriteString("Each value is a deviation from the category average: -2.0 (far below) to 2.0 (far above), 0 neutral.\n\n")
	sb.WriteString(analysisSchemaPrompt)
	sb.WriteString("\n\nRespond with only valid JSON matching the schema.")
	return sb.String()
}

func classifyTransportError(err error) llmFailureClass {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, " 5") || strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, " 4") || strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
