package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcdclient"
)

// Config is the persisted CLI configuration.
type Config struct {
	CurrentContext string                    `json:"current_context,omitempty" yaml:"current_context,omitempty"`
	Output         string                    `json:"output,omitempty"          yaml:"output,omitempty"`
	NATSURL        string                    `json:"nats_url,omitempty"        yaml:"nats_url,omitempty"`
	Contexts       map[string]*ContextConfig `json:"contexts,omitempty"        yaml:"contexts,omitempty"`
}

// ContextConfig is a named endpoint.
type ContextConfig struct {
	Endpoint  string        `json:"endpoint"             yaml:"endpoint"`
	Timeout   time.Duration `json:"timeout,omitempty"    yaml:"timeout,omitempty"`
	KeepAlive bool          `json:"keep_alive,omitempty" yaml:"keep_alive,omitempty"`
}

// Options converts the context into connection options.
func (c *ContextConfig) Options() (etcd.ConnectionOptions, error) {
	opts, err := etcdclient.ParseEndpoint(c.Endpoint)
	if err != nil {
		return opts, err
	}

	if c.Timeout != 0 {
		opts.Timeout = c.Timeout
	}

	opts.KeepAlive = c.KeepAlive

	return opts, etcd.ValidateConnectionOptions(opts)
}

// configPath returns the file viper read, or the default location.
func configPath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+".yml"), nil
}

// loadConfig reads the config file as written, without flag or environment
// overrides. A missing file yields an empty config.
func loadConfig() (*Config, error) {
	config := &Config{Contexts: make(map[string]*ContextConfig)}

	configFile, err := configPath()
	if err != nil {
		return nil, err
	}

	// configFile comes from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Contexts == nil {
		config.Contexts = make(map[string]*ContextConfig)
	}

	return config, nil
}

func saveConfig(config *Config) error {
	configFile, err := configPath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
