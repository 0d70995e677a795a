package cmd

import (
	"fmt"
	"os"

	"github.com/bitelog/bite/internal/compress"
	"github.com/spf13/cobra"
)

func CompressCmd() *cobra.Command {
	var target, start, step, floor int

	c := &cobra.Command{
		Use:   "compress <in> <out>",
		Short: "Run the storage compression ladder on a local image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			res, err := compress.NewQualityLadder(target, start, step, floor).Compress(data)
			if err != nil {
				return err
			}

			err = os.WriteFile(args[1], res.Data, 0644)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d bytes, quality %d, %dx%d, %d encodes, resized %v\n",
				len(data), len(res.Data), res.Quality, res.Width, res.Height, res.Attempts, res.Resized)
			return nil
		},
	}

	c.Flags().IntVar(&target, "target", 200*1024, "size budget in bytes")
	c.Flags().IntVar(&start, "start", 85, "starting JPEG quality")
	c.Flags().IntVar(&step, "step", 5, "quality step")
	c.Flags().IntVar(&floor, "min", 20, "minimum JPEG quality")
	return c
}
