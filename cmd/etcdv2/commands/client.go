package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/internal/events"
	"github.com/fivetwenty-io/etcdv2-client/internal/logging"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcdclient"
)

// currentContextName returns the --context flag, else the configured current
// context. Empty means the built-in defaults.
func currentContextName() string {
	name := viper.GetString("context")
	if name == "" {
		name = viper.GetString("current_context")
	}

	return name
}

// resolveConnectionOptions merges the selected context with flag and
// environment overrides.
func resolveConnectionOptions() (etcd.ConnectionOptions, error) {
	opts := etcd.DefaultConnectionOptions()

	if name := currentContextName(); name != "" {
		config, err := loadConfig()
		if err != nil {
			return opts, err
		}

		contextConfig, ok := config.Contexts[name]
		if !ok {
			return opts, fmt.Errorf("%w: %s", constants.ErrContextNotFound, name)
		}

		opts, err = contextConfig.Options()
		if err != nil {
			return opts, fmt.Errorf("context %s: %w", name, err)
		}
	}

	if host := viper.GetString("host"); host != "" {
		opts.Host = host
	}

	if port := viper.GetInt("port"); port != 0 {
		opts.Port = port
	}

	if protocol := viper.GetString("protocol"); protocol != "" {
		opts.Protocol = protocol
	}

	if timeout := viper.GetDuration("timeout"); timeout != 0 {
		opts.Timeout = timeout
	}

	if viper.GetBool("keep_alive") {
		opts.KeepAlive = true
	}

	return opts, nil
}

// newClient registers a connection for this invocation and opens a client on
// it. The returned func releases the connection and the event publisher.
func newClient(cmd *cobra.Command) (etcd.Client, func(), error) {
	opts, err := resolveConnectionOptions()
	if err != nil {
		return nil, nil, err
	}

	token, err := etcd.DefaultRegistry.Create(opts)
	if err != nil {
		return nil, nil, err
	}

	verbose := viper.GetBool("verbose")
	logger := logging.New(cmd.ErrOrStderr(), verbose).With("context", currentContextName())

	config := &etcd.Config{
		Logger:    logger,
		Debug:     verbose,
		UserAgent: "etcdv2-cli/" + cmd.Root().Version,
		RetryMax:  viper.GetInt("retries"),
	}

	var publisher *events.Publisher

	if natsURL := viper.GetString("nats_url"); natsURL != "" {
		publisher, err = events.Connect(natsURL, events.WithFlushTimeout(constants.DefaultPublishTimeout))
		if err != nil {
			etcd.DefaultRegistry.Remove(token)

			return nil, nil, err
		}

		config.Publisher = publisher
	}

	release := func() {
		if publisher != nil {
			publisher.Close()
		}

		etcd.DefaultRegistry.Remove(token)
	}

	client, err := etcdclient.Open(etcd.DefaultRegistry, token, config)
	if err != nil {
		release()

		return nil, nil, err
	}

	return client, release, nil
}

// buildArgs turns CLI flags into an operation's argument list: options,
// then the separator, then NAME=VALUE query pairs.
func buildArgs(options []string, queries []string) ([]string, error) {
	tokens := make([]string, 0, len(options)+1+len(queries)*2)
	tokens = append(tokens, options...)
	tokens = append(tokens, etcd.Separator)

	for _, query := range queries {
		name, value, ok := strings.Cut(query, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQueryArgument, query)
		}

		tokens = append(tokens, name, value)
	}

	return tokens, nil
}
