// Package main provides the entry point for the AgriMarket server and operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agrimarket",
	Short: "AgriMarket farmer marketplace server",
	Long:  "AgriMarket connects smallholder farmers with bulk buyers: trust-scored farmer profiles, a produce marketplace, and operator tooling for bulk farmer imports.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
