// Package cli implements the gcpkit command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/velora-data/gcpkit/internal/adapters/driven/config/file"
	"github.com/velora-data/gcpkit/internal/logger"
)

var (
	flagVerbose     bool
	flagConfigDir   string
	flagCredentials string
)

var rootCmd = &cobra.Command{
	Use:   "gcpkit",
	Short: "Authenticated Google Cloud clients from one credential source",
	Long: `gcpkit resolves service-account credentials and hands out cached,
authenticated clients for BigQuery, Cloud Storage, Analytics Reporting and
Ad Manager.

Credentials come from --credentials, the credentials_path config key, or the
GOOGLE_APPLICATION_CREDENTIALS environment variable, in that order.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.gcpkit)")
	rootCmd.PersistentFlags().StringVar(&flagCredentials, "credentials", "", "path to a service-account key file")
}

// loadConfig reads the config file and applies the --credentials override.
func loadConfig() (*configfile.Config, error) {
	store, err := configfile.NewStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	if flagCredentials != "" {
		cfg.CredentialsPath = flagCredentials
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
