package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bitelog/bite/internal/identity"
	"github.com/spf13/cobra"
)

func TokenCmd() *cobra.Command {
	var secret, email string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for AUTH_PROVIDER=jwt deployments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}
			token, err := identity.NewJWTProvider(secret).Issue(args[0], email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (JWT_SECRET)")
	c.Flags().StringVar(&email, "email", "", "email claim")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return c
}
