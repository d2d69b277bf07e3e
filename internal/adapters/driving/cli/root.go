// Package cli implements the quire command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quire/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Root flags.
var (
	verbose   bool
	noConfig  bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "Bundle documents into a few balanced files",
	Long: `quire collects many small documents (GitHub issues, Google Drive markdown
files, local files) and merges them into a fixed number of evenly sized
artifacts. Items that cannot be fetched after retrying are skipped and
reported; the rest of the run carries on.

Settings live in ~/.quire/config.toml and run history in ~/.quire/data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if !needsApp(cmd) {
			return nil
		}
		return openApp()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"ignore the config file and keep run history in memory")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.quire)")
}

// SetVersion sets the version reported by "quire version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	return err
}

// needsApp reports whether a command uses settings or run history.
func needsApp(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationNoApp] == ""
}

const annotationNoApp = "quire/no-app"

var errNotConfigured = errors.New("application not configured")

func requireApp() (*App, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: run through the quire root command", errNotConfigured)
	}
	return app, nil
}
