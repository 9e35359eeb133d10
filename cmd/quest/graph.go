package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the world as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the scenes. With --session the path of that session is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		key, _ := cmd.Flags().GetString("session")
		return cli.WriteGraph(cmd.Context(), cmd.OutOrStdout(), app, key)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of this session")
}
