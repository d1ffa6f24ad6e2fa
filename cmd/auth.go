package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage and verify the Slack user token",
	}

	cmd.AddCommand(
		newAuthSetCmd(app),
		newAuthShowCmd(app),
		newAuthClearCmd(app),
		newAuthCheckCmd(app),
	)

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the Slack user token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(token) == "" {
				return fmt.Errorf("token value is empty")
			}

			if err := app.credentials.Put(cmd.Context(), slackTokenName, token); err != nil {
				return fmt.Errorf("store slack token: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Slack user token (xoxp-...)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured token, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := app.credentials.Get(cmd.Context(), slackTokenName)
			if err != nil {
				return fmt.Errorf("load slack token: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), maskToken(token))
			return err
		},
	}
}

func newAuthClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.Delete(cmd.Context(), slackTokenName); err != nil {
				return fmt.Errorf("clear slack token: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Token cleared.")
			return err
		},
	}
}

// newAuthCheckCmd verifies that the token works and carries the scopes
// the sync needs: auth.test for identity, a profile read, and a profile
// write that re-submits the current values so nothing visible changes.
func newAuthCheckCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the token and its profile scopes against Slack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			provider, err := app.statusProvider(ctx)
			if err != nil {
				return err
			}

			self, team, err := provider.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("auth.test failed: %w", err)
			}
			_, _ = fmt.Fprintf(out, "authenticated as %s in %s\n", self, team)

			status, err := provider.GetStatus(ctx, self)
			if err != nil {
				return fmt.Errorf("profile read failed (users.profile:read): %w", err)
			}
			_, _ = fmt.Fprintln(out, "profile read ok")

			if err := provider.SetStatus(ctx, self, status); err != nil {
				return fmt.Errorf("profile write failed (users.profile:write): %w", err)
			}
			_, _ = fmt.Fprintln(out, "profile write ok")

			return nil
		},
	}
}

func maskToken(token string) string {
	const visible = 9
	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}

	return token[:visible] + strings.Repeat("*", len(token)-visible)
}
