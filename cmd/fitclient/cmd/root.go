// Package cmd provides the CLI commands for fitclient.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/config"
)

var (
	cfgFile         string
	storeType       string
	outputFormat    string
	traceEnabled    bool
	metricsTextfile string
	devMode         bool
)

var rootCmd = &cobra.Command{
	Use:   "fitclient",
	Short: "fitclient - command-line client for the fitness studio",
	Long: `fitclient talks to the fitness studio backend: log in, browse and book
classes, send the contact form and run the admin operations.

Quick start:
  fitclient login --username alice
  fitclient classes
  fitclient book 12 --name "Morning Yoga"

Configuration:
  Config is loaded from fitclient.yaml in the current directory,
  $HOME/.fitclient/, or /etc/fitclient/.

  Environment variables can override config values with the FITCLIENT_ prefix.
  Example: FITCLIENT_API_BASE_URL=http://localhost:8080/api

The session (token and user) is kept in the configured store between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./fitclient.yaml)")
	pf.StringVar(&storeType, "store", "", "session store: file, sqlite or memory (default: file)")
	pf.StringVarP(&outputFormat, "output", "o", formatJSON, "output format: json or yaml")
	pf.BoolVar(&traceEnabled, "trace", false, "print OpenTelemetry spans to stderr")
	pf.StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	pf.BoolVar(&devMode, "dev", false, "enable development mode (debug logging)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
