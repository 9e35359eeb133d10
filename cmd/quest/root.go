package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quest/internal/cli"
	"github.com/aretw0/quest/internal/config"
	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/pkg/service"
)

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Quest runs branching text adventures",
	Long: `Quest plays scene graphs driven by free-form player input.
Without a subcommand it starts an interactive session of the loaded world.
Every flag can also be set through a QUEST_* environment variable.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("content", "c", "", "World file (.yaml) or directory of scene documents; empty uses the built-in world")
	flags.String("store", "", "Session store: memory, file, sqlite or redis")
	flags.String("session-dir", "", "Directory of the file store")
	flags.String("sqlite-path", "", "Database file of the sqlite store")
	flags.String("redis-addr", "", "Address of the redis store")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads QUEST_* variables and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("content", &cfg.ContentPath)
	override("store", &cfg.Store)
	override("session-dir", &cfg.SessionDir)
	override("sqlite-path", &cfg.SQLitePath)
	override("redis-addr", &cfg.RedisAddr)
	override("log-level", &cfg.LogLevel)
	if flags.Changed("port") {
		cfg.HTTPPort, _ = flags.GetInt("port")
	}
	if flags.Changed("transport") {
		cfg.MCPTransport, _ = flags.GetString("transport")
	}
	if flags.Changed("mcp-port") {
		cfg.MCPPort, _ = flags.GetInt("mcp-port")
	}
	return cfg, cfg.Validate()
}

// loadApp builds the application for cmd. The caller must Close it.
func loadApp(cmd *cobra.Command, svcOpts ...service.Option) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, logging.New(level), svcOpts...)
}
