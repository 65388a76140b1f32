// Package cmd implements the CLI commands for the pricelens server.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pricelens",
	Short: "Find products from photos and track their prices",
	Long:  "An API-first service that extracts product keywords from photos, searches Amazon and Flipkart for matching offers, and tracks wishlist items for price-drop alerts.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
