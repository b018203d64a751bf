package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/coffeebreak-api/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coffeebreak",
	Short: "Coffee Break podcast metadata engine",
	Long: `Coffee Break API - metadata extraction for the Coffee Break: Señal y Ruido podcast

Turns the raw feed, info and web texts scraped for every episode into one
normalized master dataset: titles, dates, durations, timestamped topics
and a canonical roster of participants.

Features:
  • Timestamp parsing and topic segmentation
  • Participant name normalization with an auditable registry
  • Source reconciliation across RSS, info and web texts
  • Episode assembly for single and two-part releases
  • JSON dataset export and a read-only HTTP API`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigPath, "settings file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Load(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
