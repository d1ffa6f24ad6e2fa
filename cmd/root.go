package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ofc",
		Short:         "ofc: sync Slack statuses with who is physically at the office",
		Long:          "ofc scans the office network for known workstations and keeps each person's Slack status in step with their physical presence, backing off while they are marked as on a break.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSyncCmd(app),
		newScanCmd(app),
		newStatusCmd(app),
		newRosterCmd(app),
		newAuthCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
