// Package cmd has the commands of the throttlify CLI.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "THROTTLIFY"

var (
	cfgFile string
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "throttlify",
	Short: "Throttle calls against rate limited services",
	Long: `throttlify limits the admission of calls using a concurrency limit and a
rolling window limit.

Use "serve" to run a rate limited server and "fire" to call it through a throttle.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initConfig(cmd); err != nil {
			return err
		}

		l, err := newLogger(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("could not create logger: %w", err)
		}
		logger = l

		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (sets log level to debug)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fireCmd)
}

// initConfig binds the flags of the command to viper, the values can be set with
// flags, THROTTLIFY_* env vars or the config file, in that priority.
func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("could not bind flags: %w", err)
	}

	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file %s: %w", cfgFile, err)
	}

	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}
