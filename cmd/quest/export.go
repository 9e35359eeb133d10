package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
	"github.com/aretw0/quest/internal/logging"
	loamAdapter "github.com/aretw0/quest/pkg/adapters/loam"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the world as a directory of scene documents",
	Long: `Writes one Markdown document per scene (frontmatter holds the title and choices,
the body holds the description). The directory can be edited and loaded back with --content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, logging.NewNop())
		if err != nil {
			return err
		}
		if err := loamAdapter.Export(args[0], engine.Graph()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d scenes to %s\n", engine.Graph().Len(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
