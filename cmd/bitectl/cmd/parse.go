package cmd

import (
	"io"

	"github.com/bitelog/bite/internal/analysis"
	"github.com/bitelog/bite/internal/model"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type parseOutput struct {
	Kind     string             `json:"kind"`
	Accepted bool               `json:"accepted"`
	Cause    string             `json:"cause,omitempty"`
	Analysis model.FoodAnalysis `json:"analysis"`
}

func ParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Parse a model completion from stdin the way the pipeline does",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			res := analysis.Parse(string(text))
			out := parseOutput{
				Kind:     res.Kind.String(),
				Accepted: analysis.ValidateConfidence(res.Analysis),
				Analysis: res.Analysis,
			}
			if res.Cause != nil {
				out.Cause = res.Cause.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
