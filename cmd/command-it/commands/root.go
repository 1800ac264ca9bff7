// Package commands provides the command-it CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appengine-ltd/command-it/internal/config"
	"github.com/appengine-ltd/command-it/internal/logging"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global flags
var (
	configPath string
	logLevel   string
	logPretty  bool
)

// settings is the effective configuration, loaded before any subcommand runs.
var settings config.Config

var rootCmd = &cobra.Command{
	Use:   "command-it",
	Short: "Resolve free-form commands against a catalog of operations",
	Long: `command-it maps a short natural-language command such as
"move forward fifty steps" onto one operation of a catalog built from a
Python class, a Go type or a YAML manifest, and renders it as an
executable call: forward(distance=50).

Run 'command-it repl --catalog turtle.py' for an interactive session.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "Human-readable log output")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetBuildInfo records the values stamped into main at build time.
func SetBuildInfo(version, commit, date string) {
	Version, Commit, BuildDate = version, commit, date
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionLine() + "\n")
}

func versionLine() string {
	return fmt.Sprintf("command-it %s (%s) %s", Version, Commit, BuildDate)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if cmd.Flags().Changed("log-pretty") {
		cfg.Logging.Pretty = logPretty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings = cfg

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: cmd.ErrOrStderr(),
		Pretty: cfg.Logging.Pretty,
	})
	return nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
