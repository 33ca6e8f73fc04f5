package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vitrine/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vitrine",
		Short:         "Exhibit curation API: saved searches, bulk reconciliation and autocomplete",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}
	root.PersistentFlags().String("env", "", "config environment (defaults to $ENV or local)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newInitDefaultCmd())
	return root
}
