package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hydrosleep",
	Short: "hydrosleep serves the water, sleep and goal tracking API",
	Long:  "hydrosleep is the backend for the HydroSleep mobile app: accounts, daily water and sleep logs, goals, and weekly analytics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("CONFIG_PATH", configPath)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (overrides CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
