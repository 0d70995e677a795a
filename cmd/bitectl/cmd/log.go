package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bitelog/bite/internal/repository"
	"github.com/bitelog/bite/internal/validation"
	"github.com/spf13/cobra"
)

func LogCmd() *cobra.Command {
	var date string

	c := &cobra.Command{
		Use:   "log <user-id>",
		Short: "List a user's eaten products for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format(time.DateOnly)
			}
			if err := validation.ValidateDate(date); err != nil {
				return err
			}

			conn, _, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			products, err := repository.NewEatenProductRepository(conn).ByDate(cmd.Context(), args[0], date)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVALUE\tKCAL\tPROTEIN\tIMAGE")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name, optional(p.Value, p.Unit), optional(p.Kcalories, ""), optional(p.Protein, "г"), p.ImageURL)
			}
			return w.Flush()
		},
	}

	c.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return c
}

func optional(v *int64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d%s", *v, unit)
}
