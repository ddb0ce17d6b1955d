package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeMessager struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeMessager) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	text := ""
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
	}, nil
}

func TestGenerateAnalysisDecodesJSON(t *testing.T) {
	caller := &AnthropicCaller{messages: &fakeMessager{
		responses: []string{`{"parameters": {}}`},
	}}
	raw, err := caller.GenerateAnalysis(context.Background(), AnalysisRequest{BrandName: "Acme", Budget: 500000, CampaignGoal: "awareness"})
	if err != nil {
		t.Fatal(err)
	}
	env, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", raw)
	}
	if _, ok := env["parameters"]; !ok {
		t.Fatal("expected parameters in decoded payload")
	}
}

func TestGenerateAnalysisPassesRawTextThrough(t *testing.T) {
	// Fenced or prose-wrapped output is not decodable at the top level;
	// the caller hands it through untouched for the normalizer.
	text := "```json\n{\"parameters\": {}}\n```"
	caller := &AnthropicCaller{messages: &fakeMessager{responses: []string{text}}}
	raw, err := caller.GenerateAnalysis(context.Background(), AnalysisRequest{BrandName: "Acme"})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := raw.(string)
	if !ok || s != text {
		t.Fatalf("expected raw text pass-through, got %T %v", raw, raw)
	}
	if _, err := Normalize(raw); err != nil {
		t.Fatalf("normalizer should accept the passed-through text: %v", err)
	}
}

func TestGenerateAnalysisRetriesTransientFailures(t *testing.T) {
	fake := &fakeMessager{
		errs:      []error{errors.New("status code: 429"), nil},
		responses: []string{"", `{"parameters": {}}`},
	}
	caller := &AnthropicCaller{messages: fake}
	if _, err := caller.GenerateAnalysis(context.Background(), AnalysisRequest{BrandName: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if fake.calls != 2 {
		t.Fatalf("expected retry after 429, calls=%d", fake.calls)
	}
}

func TestGenerateAnalysisDoesNotRetryClientErrors(t *testing.T) {
	fake := &fakeMessager{errs: []error{errors.New("status code: 401 unauthorized")}}
	caller := &AnthropicCaller{messages: fake}
	if _, err := caller.GenerateAnalysis(context.Background(), AnalysisRequest{BrandName: "Acme"}); err == nil {
		t.Fatal("expected transport error")
	}
	if fake.calls != 1 {
		t.Fatalf("client errors must not retry, calls=%d", fake.calls)
	}
}

func TestBuildAnalysisPromptMentionsInputs(t *testing.T) {
	p := buildAnalysisPrompt(AnalysisRequest{BrandName: "Acme Cola", Budget: 1500000, CampaignGoal: "retention"})
	for _, want := range []string{"Acme Cola", "1500000", "retention", "brand_awareness", "ta_capacity_rf"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestClassifyTransportError(t *testing.T) {
	if classifyTransportError(context.DeadlineExceeded) != failureTimeout {
		t.Fatal("deadline should classify as timeout")
	}
	if classifyTransportError(errors.New("status code: 429")) != failureRateLimit {
		t.Fatal("429 should classify as rate limit")
	}
	if classifyTransportError(errors.New("status code: 503")) != failureServer {
		t.Fatal("503 should classify as server")
	}
}

func TestBackoffDelay(t *testing.T) {
	if backoffDelay(1).Seconds() != 1 {
		t.Fatal("attempt 1 should be 1s")
	}
	if backoffDelay(2).Seconds() != 2 {
		t.Fatal("attempt 2 should be 2s")
	}
}
