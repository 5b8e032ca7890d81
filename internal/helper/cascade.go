package helper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/secrethelper/api/internal/model"
)

// RepairFunc asks the text backend for a corrected version of malformed
// output. At most one repair call is made per Recover invocation.
type RepairFunc func(ctx context.Context, prompt string) (string, error)

// clarificationFallback is returned when every recovery strategy fails.
const clarificationFallback = "I had trouble formatting my response. Could you rephrase your request?"

// Recover turns raw backend output into a StructuredResult. It tries, in
// order: direct parse, truncation closing, brace block extraction, a single
// model-assisted repair, and finally a safe clarification fallback. Recover
// never returns nil and never returns an error; a result that asks the user
// to rephrase is the worst case.
func Recover(ctx context.Context, raw string, repair RepairFunc) *model.StructuredResult {
	raw = strings.TrimSpace(raw)

	// Strategy 1: the output is already valid JSON
	if obj, err := parseObject(raw); err == nil {
		return Normalize(obj)
	}

	// Strategy 2: the output was cut off mid-stream
	if closed := CloseTruncated(raw); closed != raw {
		if obj, err := parseObject(closed); err == nil {
			log.Printf("[helper] recovered truncated response (%d bytes)", len(raw))
			return Normalize(obj)
		}
	}

	// Strategy 3: the object is wrapped in prose or markdown fences
	if idx := strings.Index(raw, "{"); idx >= 0 {
		block := raw[idx:]
		if end := strings.LastIndex(block, "}"); end >= 0 {
			if obj, err := parseObject(block[:end+1]); err == nil {
				log.Printf("[helper] recovered embedded JSON block")
				return Normalize(obj)
			}
		}
		if closed := CloseTruncated(block); closed != block {
			if obj, err := parseObject(closed); err == nil {
				log.Printf("[helper] recovered truncated embedded block")
				return Normalize(obj)
			}
		}
	}

	// Strategy 4: one model-assisted repair round
	if repair != nil {
		fixed, err := repair(ctx, buildRepairPrompt(raw))
		if err == nil {
			if obj, perr := parseObject(strings.TrimSpace(fixed)); perr == nil {
				log.Printf("[helper] recovered via model-assisted repair")
				return Normalize(obj)
			}
		} else {
			log.Printf("[helper] repair call failed: %v", err)
		}
	}

	// Strategy 5: give up safely and ask the user to rephrase
	log.Printf("[helper] all recovery strategies failed, returning clarification fallback")
	res := Fallback()
	res.NeedClarification = true
	res.ClarifyingQuestion = clarificationFallback
	res.AssistantMessage = clarificationFallback
	return res
}

// parseObject decodes raw as a JSON object. Valid JSON that is not an
// object (a bare string, number or array) is rejected.
func parseObject(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty input")
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("null object")
	}
	return obj, nil
}

// CloseTruncated closes an incomplete JSON document. It scans the input
// tracking string and escape state and a bracket stack, then appends a
// closing quote if the scan ends inside a string and the closers for any
// still-open brackets, deepest first. A trailing comma or colon is dropped
// before closing. Input with no open brackets is returned unchanged.
func CloseTruncated(raw string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 && !inString {
		return raw
	}

	out := raw
	if inString {
		// A lone trailing backslash would escape our closing quote
		if escaped {
			out = out[:len(out)-1]
		}
		out += `"`
	}

	trimmed := strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, ":") {
		out = trimmed[:len(trimmed)-1]
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out
}

// buildRepairPrompt asks the backend to fix its own malformed output.
func buildRepairPrompt(raw string) string {
	if len(raw) > 3000 {
		raw = raw[:3000]
	}
	return "The following was supposed to be a single valid JSON object but is malformed. " +
		"Return ONLY the corrected JSON object with the same content. No explanation, no markdown.\n\n" + raw
}
