package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"events-admin/internal/auth"
	"events-admin/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "token",
		Short: "Manage operator tokens for the events admin API",
	}
	root.AddCommand(newIssueCmd(), newInspectCmd())
	return root
}

func newIssueCmd() *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed token for an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initSecret(); err != nil {
				return err
			}

			token, err := auth.GenerateToken(operator, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "operator name carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Validate a token and print its operator and expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initSecret(); err != nil {
				return err
			}

			claims, err := auth.ValidateToken(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "operator: %s\n", claims.Operator)
			fmt.Fprintf(out, "token id: %s\n", claims.ID)
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "expires:  %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func initSecret() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	auth.InitJWT(cfg.App.JWTSecret)
	return nil
}
