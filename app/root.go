// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "billgix",
	Short: "Billgix is a web-based inventory and billing tool",
	Long: `Billgix is a web-based inventory and billing tool for small
businesses that provides product, customer and sales management with
invoice generation and email notifications.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
