package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/velora-data/gcpkit/internal/adapters/driven/auth/serviceaccount"
	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/services"
)

var credCheckService string

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect credential resolution",
}

var credentialsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve credentials and print the authenticated identity",
	Long: `Resolve the service-account credential file and print the identity it
grants, without calling any Google service. Scope grantability is only
verified at first use.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		catalog := services.NewScopeCatalog()
		scopes, err := catalog.ScopesFor(domain.ServiceType(credCheckService))
		if err != nil {
			return err
		}

		resolver := serviceaccount.NewResolver()
		cred, err := resolver.Resolve(cmd.Context(), cfg.CredentialsPath, scopes)
		if err != nil {
			return err
		}

		cmd.Printf("service account: %s\n", cred.ClientEmail)
		cmd.Printf("project:         %s\n", cred.ProjectID)
		cmd.Printf("source:          %s\n", cred.Source)
		cmd.Printf("scopes:          %s\n", strings.Join(cred.Scopes, ", "))
		return nil
	},
}

func init() {
	credentialsCheckCmd.Flags().StringVar(&credCheckService, "service", string(domain.ServiceBigQuery),
		"service whose scope set to resolve for")
	credentialsCmd.AddCommand(credentialsCheckCmd)
	rootCmd.AddCommand(credentialsCmd)
}
