package main

import (
	"os"

	"github.com/bitelog/bite/cmd/bitectl/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "bitectl",
		Short:        "Operator tools for the Bite backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CompressCmd())
	rootCmd.AddCommand(cmd.ParseCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
