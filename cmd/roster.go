package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRosterCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect the office roster",
	}

	cmd.AddCommand(
		newRosterListCmd(app),
		newRosterValidateCmd(app),
	)

	return cmd
}

func newRosterListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the people on the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, err := app.roster.Load(cmd.Context())
			if err != nil {
				return err
			}

			for _, person := range people {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", person.ID, person.Address, person.DisplayName)
			}

			return nil
		},
	}
}

func newRosterValidateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the roster file and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, err := app.roster.Load(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d people, no problems found\n", app.roster.Path(), len(people))
			return err
		},
	}
}
