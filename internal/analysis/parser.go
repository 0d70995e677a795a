package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bitelog/bite/internal/model"
	"github.com/bitelog/bite/internal/validation"
	json "github.com/goccy/go-json"
)

// FallbackFoodName is reported when the completion could not be parsed.
const FallbackFoodName = "Unknown"

var (
	jsonFence    = regexp.MustCompile("(?s)```json\\n?(.*?)\\n?```")
	genericFence = regexp.MustCompile("(?s)```\\n?(.*?)\\n?```")
)

type Kind int

const (
	KindOK Kind = iota
	KindFallback
)

func (k Kind) String() string {
	if k == KindFallback {
		return "fallback"
	}
	return "ok"
}

// Result is either a parsed analysis or a low-confidence fallback carrying
// the raw completion. Cause explains a fallback.
type Result struct {
	Kind     Kind
	Analysis model.FoodAnalysis
	Cause    error
}

// Parse extracts the JSON payload from a completion. A ```json fence wins over
// a plain ``` fence, which wins over the whole text. Parse never fails: any
// problem yields a fallback result.
func Parse(text string) Result {
	payload := strings.TrimSpace(extractPayload(text))

	var a model.FoodAnalysis
	err := json.Unmarshal([]byte(payload), &a)
	if err != nil {
		return fallback(text, fmt.Errorf("failed to decode analysis: %w", err))
	}

	err = validation.ValidateStruct(a)
	if err != nil {
		return fallback(text, fmt.Errorf("invalid analysis: %w", err))
	}

	a.RawResponse = ""
	return Result{Kind: KindOK, Analysis: a}
}

func extractPayload(text string) string {
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := genericFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func fallback(text string, cause error) Result {
	return Result{
		Kind: KindFallback,
		Analysis: model.FoodAnalysis{
			FoodName:    FallbackFoodName,
			Confidence:  model.ConfidenceLow,
			RawResponse: text,
		},
		Cause: cause,
	}
}

// ValidateConfidence reports whether the analysis may be persisted.
// Only medium and high pass; low, missing and unknown values are rejected.
func ValidateConfidence(a model.FoodAnalysis) bool {
	switch a.Confidence {
	case model.ConfidenceMedium, model.ConfidenceHigh:
		return true
	default:
		return false
	}
}
