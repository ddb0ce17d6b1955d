package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// An extractStrategy inspects the raw envelope and either claims it
// (ok=true, returning the candidate payload object) or passes. A
// strategy that claims the envelope but cannot produce an object
// returns a *NormalizationError; later strategies are not consulted.
type extractStrategy func(raw any) (payload map[string]any, ok bool, err error)

// Strategy order is fixed: OpenAI chat-completion envelope first, then
// the envelope itself, then a bare string, then a scan of conventional
// wrapper fields. First match wins.
var strategies = []extractStrategy{
	fromChatCompletion,
	fromDirectObject,
	fromBareString,
	fromWrapperFields,
}

// wrapperFields are scanned in order by fromWrapperFields.
var wrapperFields = []string{"content", "text", "output", "result", "data"}

func extractPayload(raw any) (map[string]any, error) {
	for _, strategy := range strategies {
		payload, ok, err := strategy(raw)
		if err != nil {
			return nil, err
		}
		if ok {
			return payload, nil
		}
	}
	return nil, &NormalizationError{
		Kind:    KindUnrecognizedShape,
		Message: "response matched no known envelope shape",
	}
}

// fromChatCompletion handles choices[0].message.content envelopes.
func fromChatCompletion(raw any) (map[string]any, bool, error) {
	env, ok := raw.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	choices, ok := env["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, false, nil
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	// A message without content does not match this shape; the envelope
	// may still resolve through a later strategy.
	if message["content"] == nil {
		return nil, false, nil
	}
	switch content := message["content"].(type) {
	case string:
		payload, err := parseJSONText(content)
		return payload, true, err
	case map[string]any:
		return content, true, nil
	default:
		return nil, true, &NormalizationError{
			Kind:    KindUnrecognizedShape,
			Message: "chat completion message has no usable content",
		}
	}
}

// fromDirectObject handles envelopes that carry parameters themselves.
func fromDirectObject(raw any) (map[string]any, bool, error) {
	env, ok := raw.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	if _, has := env["parameters"]; !has {
		return nil, false, nil
	}
	return env, true, nil
}

func fromBareString(raw any) (map[string]any, bool, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, false, nil
	}
	payload, err := parseJSONText(s)
	return payload, true, err
}

// fromWrapperFields scans conventional wrapper fields in order. A
// string field must parse to an object carrying parameters; an object
// field must carry parameters directly. The first field that succeeds
// wins; fields that are absent or fail to parse are skipped.
func fromWrapperFields(raw any) (map[string]any, bool, error) {
	env, ok := raw.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	for _, field := range wrapperFields {
		v, has := env[field]
		if !has {
			continue
		}
		switch inner := v.(type) {
		case string:
			payload, err := parseJSONText(inner)
			if err != nil {
				continue
			}
			if _, has := payload["parameters"]; has {
				return payload, true, nil
			}
		case map[string]any:
			if _, has := inner["parameters"]; has {
				return inner, true, nil
			}
		}
	}
	return nil, false, nil
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")

	// Greedy span from the first brace to the last, kept only when it
	// mentions the parameters field. Deliberately a heuristic: with
	// several brace regions in prose it can over-capture, and the
	// stricter alternatives all reject more real responses than this
	// accepts bad ones.
	braceSpanRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseJSONText turns free-form model text into a JSON object. It
// tries, in order: the whole string as JSON, the first ```json fenced
// block, and a greedy brace-delimited span containing "parameters".
func parseJSONText(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	if payload, ok := unmarshalObject(trimmed); ok {
		return payload, nil
	}
	if m := fencedJSONRe.FindStringSubmatch(trimmed); m != nil {
		if payload, ok := unmarshalObject(m[1]); ok {
			return payload, nil
		}
	}
	if span := braceSpanRe.FindString(trimmed); span != "" && strings.Contains(span, `"parameters"`) {
		if payload, ok := unmarshalObject(span); ok {
			return payload, nil
		}
	}
	return nil, &NormalizationError{
		Kind:    KindMalformedJSON,
		Message: "text payload is not parseable JSON",
	}
}

func unmarshalObject(s string) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, false
	}
	return payload, true
}
