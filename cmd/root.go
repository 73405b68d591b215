package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridstats/agent/internal/config"
	"github.com/gridstats/agent/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gridstats-agent",
	Short: "NFL player statistics agent",
	Long:  `Serves NFL player statistics through a tiered cache and a fallback chain of data sources.`,
	RunE:  runServe,
}

// Command flags
var (
	configFile   string
	outputFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")

	viper.SetEnvPrefix("GRIDSTATS")
	viper.AutomaticEnv()
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the agent version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

// loadRuntime resolves configuration and builds the logger shared by
// every command.
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	path := configFile
	if path == "" {
		path = viper.GetString("config")
	}
	if path == "" {
		path = os.Getenv("GRIDSTATS_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Logging), nil
}
