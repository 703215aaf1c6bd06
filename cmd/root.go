// Package cmd implements the command-line interface for the tender scanner.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/tenderscan/cmd/httpd"
	"github.com/jonesrussell/tenderscan/cmd/scan"
	cmdscheduler "github.com/jonesrussell/tenderscan/cmd/scheduler"
	cmdsources "github.com/jonesrussell/tenderscan/cmd/sources"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "tenderscan",
	Short: "Canadian procurement opportunity scanner",
	Long: `tenderscan watches Canadian procurement portals for training-related
tender opportunities, classifies them against a course taxonomy, and keeps
a change-detected history of everything it has seen.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tenderscan version %s\n", version)
		},
	})

	rootCmd.AddCommand(scan.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
	rootCmd.AddCommand(cmdsources.Command())
}
