package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the netfliz admin CLI. Subcommands (tenant, etc.) are attached here.
var rootCmd = &cobra.Command{
	Use:           "netfliz",
	Short:         "Netfliz admin CLI",
	Long:          "Administrative utilities for Netfliz (tenant provisioning, schema bootstrap).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
