// Package app provides the tokenserver command line.
package app

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the tokenserver root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tokenserver",
		Short:         "Issues signed access tokens for local and social sign-in flows",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHashPasswordCmd())

	return rootCmd
}
