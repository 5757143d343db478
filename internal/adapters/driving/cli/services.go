package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velora-data/gcpkit/internal/core/domain"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List supported services, their scopes and versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		types := domain.Services()
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		for _, t := range types {
			d, err := domain.DescriptorFor(t)
			if err != nil {
				return err
			}
			cmd.Printf("%s (%s)\n", d.Type, d.Name)
			cmd.Printf("  scopes: %s\n", strings.Join(d.Scopes, ", "))
			if d.Versioned {
				cmd.Printf("  versions: %s (latest %s)\n",
					strings.Join(d.Versions, ", "), d.LatestVersion())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}
