package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the world interactively",
	Long: `Starts an interactive session. With --session the adventure is stored under that key
and resumed on the next run. Type 'journal' for a summary, 'look' to repeat the scene,
'restart' to start over and 'quit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		key, _ := cmd.Flags().GetString("session")
		name, _ := cmd.Flags().GetString("name")
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.Play(cmd.Context(), app, cli.PlayOptions{
			Key:      key,
			Name:     name,
			Headless: headless || !cli.IsTerminal(os.Stdout),
			JSON:     jsonMode,
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("session", "s", "", "Store the adventure under this key and resume it")
	playCmd.Flags().StringP("name", "n", "", "Player name used in the greeting")
	playCmd.Flags().Bool("headless", false, "Plain text IO without banner or markdown rendering")
	playCmd.Flags().Bool("json", false, "NDJSON input and output")

	rootCmd.Flags().AddFlagSet(playCmd.Flags())
	rootCmd.RunE = playCmd.RunE
}
