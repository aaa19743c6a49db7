// Package narrative turns final workload facts into human-readable text.
// Generators only ever explain numbers they are given; no output is read
// back as a score or a tier.
package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
)

// ErrMalformedOutput is returned when generated text is not the JSON
// document that was asked for.
var ErrMalformedOutput = errors.New("malformed generator output")

const stressInstructions = `You explain a student's weekly stress estimate.
All numbers below are final. Do not change, recompute or add any score, risk level or day.
Reply with JSON only: {"explanation": "<two or three sentences>"}

Facts:
`

const priorityInstructions = `You explain why each task has its rank.
The ranking below is final. Do not reorder tasks or change any score.
Reply with JSON only: {"reasons": ["<one sentence for rank 1>", "<one sentence for rank 2>", ...]}
Give exactly one reason per task, in rank order.

Tasks:
`

type stressReply struct {
	Explanation string `json:"explanation"`
}

type priorityReply struct {
	Reasons []string `json:"reasons"`
}

func stressPrompt(facts services.StressFacts) (string, error) {
	raw, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode stress facts: %w", err)
	}
	return stressInstructions + string(raw), nil
}

func priorityPrompt(facts []services.PriorityFacts) (string, error) {
	raw, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode priority facts: %w", err)
	}
	return priorityInstructions + string(raw), nil
}

// extractJSON returns the JSON object inside text, dropping markdown fences
// and any prose around the outermost braces.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object", ErrMalformedOutput)
	}
	return text[start : end+1], nil
}

func parseStressReply(text string) (string, error) {
	doc, err := extractJSON(text)
	if err != nil {
		return "", err
	}
	var reply stressReply
	if err := json.Unmarshal([]byte(doc), &reply); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	explanation := strings.TrimSpace(reply.Explanation)
	if explanation == "" {
		return "", fmt.Errorf("%w: empty explanation", ErrMalformedOutput)
	}
	return explanation, nil
}

// parsePriorityReply requires at least want non-blank reasons.
func parsePriorityReply(text string, want int) ([]string, error) {
	doc, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var reply priorityReply
	if err := json.Unmarshal([]byte(doc), &reply); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	if len(reply.Reasons) < want {
		return nil, fmt.Errorf("%w: got %d reasons for %d tasks", services.ErrMissingReasons, len(reply.Reasons), want)
	}
	for i, r := range reply.Reasons[:want] {
		if strings.TrimSpace(r) == "" {
			return nil, fmt.Errorf("%w: reason %d is blank", services.ErrMissingReasons, i+1)
		}
	}
	return reply.Reasons[:want], nil
}
