package model

const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// FoodAnalysis is the nutrition estimate extracted from an LLM completion.
// Numeric fields are pointers: nil means the model did not report the value,
// which is different from a reported zero. Values must fit the INTEGER
// columns they are stored in.
type FoodAnalysis struct {
	FoodName    string   `json:"food_name"`
	Calories    *float64 `json:"calories,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	Protein     *float64 `json:"protein,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	Weight      *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	Confidence  string   `json:"confidence" validate:"required,oneof=low medium high"`
	RawResponse string   `json:"raw_response,omitempty"` // Only set when the completion could not be parsed
}
