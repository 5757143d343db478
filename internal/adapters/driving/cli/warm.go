package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velora-data/gcpkit/internal/adapters/driven/auth/serviceaccount"
	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/services"
)

var warmVersion string

var warmCmd = &cobra.Command{
	Use:   "warm <service>",
	Short: "Construct and cache a client for a service",
	Long: `Resolve credentials and construct an authenticated client for the given
service, exercising the full resolution path. Useful for verifying a
deployment before real traffic arrives.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		resolver := serviceaccount.NewResolver()
		factory := services.NewClientFactory(resolver)
		services.RegisterDefaultBuilders(factory, services.BuilderConfig{
			AdManagerNetworkCode:     cfg.AdManager.NetworkCode,
			AdManagerApplicationName: cfg.AdManager.ApplicationName,
		})

		service := domain.ServiceType(args[0])
		opts := []services.GetOption{}
		if cfg.CredentialsPath != "" {
			opts = append(opts, services.WithCredentialPath(cfg.CredentialsPath))
		}
		version := warmVersion
		if version == "" && service == domain.ServiceAdManager {
			version = cfg.AdManager.Version
		}
		if version != "" {
			opts = append(opts, services.WithVersion(version))
		}

		if _, err := factory.GetClient(cmd.Context(), service, opts...); err != nil {
			return fmt.Errorf("warm %s: %w", service, err)
		}

		cmd.Printf("%s client constructed and cached\n", service)
		return nil
	},
}

func init() {
	warmCmd.Flags().StringVar(&warmVersion, "version", "", "wire version (versioned services only)")
	rootCmd.AddCommand(warmCmd)
}
