package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
)

// NewRootCommand creates the etcdv2 command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "etcdv2",
		Short:   "etcd v2 keys API CLI",
		Version: version,
		Long: `A command-line interface for the etcd v2 keys API.

Keys are read, written and deleted over HTTP against a single endpoint.
Named endpoints ("contexts") are kept in $HOME/.etcdv2/config.yml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.etcdv2/config.yml)")
	flags.String("context", "", "named endpoint to use instead of the current one")
	flags.String("host", "", "etcd host (overrides the context)")
	flags.Int("port", 0, "etcd port (overrides the context)")
	flags.String("protocol", "", "http or https (overrides the context)")
	flags.Duration("timeout", 0, "request timeout, 0 for none")
	flags.Bool("keep-alive", false, "reuse connections between requests")
	flags.Int("retries", 0, "retry failed requests this many times")
	flags.StringP("output", "o", "", "output format (table, json, yaml, plain)")
	flags.BoolP("verbose", "v", false, "log every request to stderr")
	flags.String("nats-url", "", "publish mutation events to this NATS server")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":     "config",
		"context":    "context",
		"host":       "host",
		"port":       "port",
		"protocol":   "protocol",
		"timeout":    "timeout",
		"keep_alive": "keep-alive",
		"retries":    "retries",
		"output":     "output",
		"verbose":    "verbose",
		"nats_url":   "nats-url",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewSetCommand())
	rootCmd.AddCommand(NewRmCommand())
	rootCmd.AddCommand(NewMkdirCommand())
	rootCmd.AddCommand(NewRmdirCommand())
	rootCmd.AddCommand(NewLsCommand())
	rootCmd.AddCommand(NewMachinesCommand())
	rootCmd.AddCommand(NewLeaderCommand())
	rootCmd.AddCommand(NewContextsCommand())

	return rootCmd
}

func initConfig(cmd *cobra.Command) error {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		// Search config in ~/.etcdv2/config.yml
		viper.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName(constants.ConfigFileName)
	}

	// Read in environment variables that match, ETCDV2_NATS_URL and so on
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("reading config: %w", err)
	}

	if viper.GetBool("verbose") {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}

	return nil
}
