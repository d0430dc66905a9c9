// Package main provides the entry point for the viral content factory CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "factory",
	Short: "Viral content factory pipeline",
	Long:  "Viral content factory turns campaign briefs into scored, scheduled social media assets across platforms, with quality and risk gating before anything publishes.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
