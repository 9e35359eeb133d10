package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage stored sessions",
}

var sessionListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored session keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ListSessions(cmd.Context(), cmd.OutOrStdout(), app)
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Print a stored session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.InspectSession(cmd.Context(), cmd.OutOrStdout(), app, args[0])
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "rm <key>...",
	Aliases: []string{"delete"},
	Short:   "Delete stored sessions",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.RemoveSession(cmd.Context(), cmd.OutOrStdout(), app, args...)
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd, sessionInspectCmd, sessionRemoveCmd)
	rootCmd.AddCommand(sessionCmd)
}
