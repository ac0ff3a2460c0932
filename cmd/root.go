package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// cfg merges flags, CCSWEEP_* environment variables and the optional config
// file. Flags of the executing command are bound in PersistentPreRunE so
// commands sharing a flag name do not overwrite each other's binding.
var cfg = newConfig()

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CCSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ccsweep",
	Short: "Sequential experiment sweeps for the ns-3 tcp-dumbbell scenario",
	Long: "ccsweep enumerates congestion-control / instance / loss-rate combinations, " +
		"runs the ns-3 tcp-dumbbell simulator once per combination, one run at a time, " +
		"and routes each run's traces into a folder derived from its parameters.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
		if path := cfg.GetString("config"); path != "" {
			cfg.SetConfigFile(path)
			if err := cfg.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file %s: %w", path, err)
			}
		}

		// Set up logging
		level, err := logrus.ParseLevel(cfg.GetString("log"))
		if err != nil {
			return fmt.Errorf("invalid log level %q", cfg.GetString("log"))
		}
		logrus.SetLevel(level)
		return nil
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addCampaignFlags registers the campaign selection flags shared by run and plan.
func addCampaignFlags(flags *pflag.FlagSet) {
	flags.StringSlice("campaigns", nil, "Campaigns to run, in order (default: plan file campaigns, else random-loss,bandwidth-competition)")
	flags.String("plan", "", "YAML file with additional campaign grids")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().String("log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML) providing defaults for any flag")
}
