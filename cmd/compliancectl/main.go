// Command compliancectl works offline with schema documents and exported audit data.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compliancectl",
		Short:         "Offline tooling for compliance schemas and dashboards",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newDashboardCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
