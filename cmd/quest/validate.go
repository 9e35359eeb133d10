package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
	"github.com/aretw0/quest/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the world for consistency",
	Long:  `Loads the world, failing on choices that lead nowhere, and reports scenes no path reaches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.ContentPath = args[0]
		}
		engine, err := cli.NewEngine(cfg, logging.NewNop())
		if err != nil {
			return err
		}
		cli.Validate(engine).Write(cmd.OutOrStdout())
		return nil
	},
	Args: cobra.MaximumNArgs(1),
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
