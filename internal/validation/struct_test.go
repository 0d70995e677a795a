package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bitelog/bite/internal/model"
)

func float(v float64) *float64 { return &v }

func TestValidateStructFoodAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis model.FoodAnalysis
		wantErr  string
	}{
		{
			name:     "valid",
			analysis: model.FoodAnalysis{FoodName: "Омлет", Calories: float(220), Confidence: "medium"},
		},
		{
			name:     "numerics absent",
			analysis: model.FoodAnalysis{FoodName: "Омлет", Confidence: "low"},
		},
		{
			name:     "missing confidence",
			analysis: model.FoodAnalysis{FoodName: "Омлет"},
			wantErr:  "Confidence is required",
		},
		{
			name:     "unknown confidence",
			analysis: model.FoodAnalysis{FoodName: "Омлет", Confidence: "very high"},
			wantErr:  "Confidence must be one of",
		},
		{
			name:     "negative calories",
			analysis: model.FoodAnalysis{FoodName: "Омлет", Calories: float(-5), Confidence: "high"},
			wantErr:  "Calories must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.analysis)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateStruct() error = %v", err)
				}
				return
			}

			var serr *StructError
			if !errors.As(err, &serr) {
				t.Fatalf("ValidateStruct() error = %v, want *StructError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateStruct() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	for _, ok := range []string{"2024-05-01", "2024-02-29"} {
		if err := ValidateDate(ok); err != nil {
			t.Errorf("ValidateDate(%q) error = %v", ok, err)
		}
	}
	for _, bad := range []string{"01.05.2024", "2024-13-01", "2023-02-29", "yesterday", "2024-5-1"} {
		if err := ValidateDate(bad); err == nil {
			t.Errorf("ValidateDate(%q) expected error", bad)
		}
	}
}
