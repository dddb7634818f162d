package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcdclient"
)

// ContextInfo is a context as displayed by the contexts commands.
type ContextInfo struct {
	Name      string `json:"name"                 yaml:"name"`
	Current   bool   `json:"current"              yaml:"current"`
	Endpoint  string `json:"endpoint"             yaml:"endpoint"`
	Timeout   string `json:"timeout,omitempty"    yaml:"timeout,omitempty"`
	KeepAlive bool   `json:"keep_alive,omitempty" yaml:"keep_alive,omitempty"`
}

// NewContextsCommand creates the contexts command group.
func NewContextsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contexts",
		Aliases: []string{"context", "ctx"},
		Short:   "Manage named endpoints",
		Long:    "Add, list, select and remove the named endpoints stored in the config file",
	}

	cmd.AddCommand(newContextsAddCommand())
	cmd.AddCommand(newContextsListCommand())
	cmd.AddCommand(newContextsUseCommand())
	cmd.AddCommand(newContextsRemoveCommand())
	cmd.AddCommand(newContextsShowCommand())

	return cmd
}

func newContextsAddCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "add NAME ENDPOINT",
		Short: "Add a named endpoint",
		Long:  "Add a named endpoint such as https://10.0.0.5:2379; --timeout and --keep-alive are stored with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, endpoint := args[0], args[1]

			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, exists := config.Contexts[name]; exists && !force {
				return fmt.Errorf("%w: %s", constants.ErrContextAlreadyExists, name)
			}

			opts, err := etcdclient.ParseEndpoint(endpoint)
			if err != nil {
				return err
			}

			contextConfig := &ContextConfig{
				Endpoint:  etcdclient.Endpoint(opts),
				Timeout:   viper.GetDuration("timeout"),
				KeepAlive: viper.GetBool("keep_alive"),
			}

			_, err = contextConfig.Options()
			if err != nil {
				return err
			}

			config.Contexts[name] = contextConfig
			if config.CurrentContext == "" {
				config.CurrentContext = name
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added context %s (%s)\n", name, contextConfig.Endpoint)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing context")

	return cmd
}

func newContextsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List named endpoints",
		Long:    "List the named endpoints, marking the current one",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(config.Contexts))
			for name := range config.Contexts {
				names = append(names, name)
			}

			sort.Strings(names)

			infos := make([]ContextInfo, 0, len(names))
			for _, name := range names {
				infos = append(infos, contextInfo(config, name))
			}

			return contextsRenderer(infos).render(cmd.OutOrStdout())
		},
	}
}

func newContextsUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the current endpoint",
		Long:  "Make NAME the endpoint used when --context is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, ok := config.Contexts[args[0]]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrContextNotFound, args[0])
			}

			config.CurrentContext = args[0]

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %s\n", args[0])

			return nil
		},
	}
}

func newContextsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a named endpoint",
		Long:    "Remove a named endpoint; the current one cannot be removed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, ok := config.Contexts[args[0]]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrContextNotFound, args[0])
			}

			if config.CurrentContext == args[0] {
				return fmt.Errorf("%w: %s", constants.ErrCannotRemoveCurrent, args[0])
			}

			delete(config.Contexts, args[0])

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed context %s\n", args[0])

			return nil
		},
	}
}

func newContextsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show a named endpoint",
		Long:  "Show NAME, or the endpoint currently in effect with flag and environment overrides applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				config, err := loadConfig()
				if err != nil {
					return err
				}

				if _, ok := config.Contexts[args[0]]; !ok {
					return fmt.Errorf("%w: %s", constants.ErrContextNotFound, args[0])
				}

				return contextsRenderer([]ContextInfo{contextInfo(config, args[0])}).render(cmd.OutOrStdout())
			}

			opts, err := resolveConnectionOptions()
			if err != nil {
				return err
			}

			name := currentContextName()
			if name == "" {
				name = constants.DefaultContextName
			}

			info := ContextInfo{
				Name:      name,
				Current:   true,
				Endpoint:  etcdclient.Endpoint(opts),
				Timeout:   formatTimeout(opts.Timeout),
				KeepAlive: opts.KeepAlive,
			}

			return contextsRenderer([]ContextInfo{info}).render(cmd.OutOrStdout())
		},
	}
}

func contextInfo(config *Config, name string) ContextInfo {
	contextConfig := config.Contexts[name]

	return ContextInfo{
		Name:      name,
		Current:   name == config.CurrentContext,
		Endpoint:  contextConfig.Endpoint,
		Timeout:   formatTimeout(contextConfig.Timeout),
		KeepAlive: contextConfig.KeepAlive,
	}
}

// formatTimeout renders a disabled timeout as an empty string.
func formatTimeout(timeout time.Duration) string {
	if timeout <= 0 {
		return ""
	}

	return timeout.String()
}

func contextsRenderer(infos []ContextInfo) renderer {
	return renderer{
		value: infos,
		table: func(table *tablewriter.Table) error {
			table.Header("Current", "Name", "Endpoint", "Timeout", "Keep-Alive")

			for _, info := range infos {
				current := ""
				if info.Current {
					current = "*"
				}

				err := table.Append([]string{current, info.Name, info.Endpoint, info.Timeout, strconv.FormatBool(info.KeepAlive)})
				if err != nil {
					return fmt.Errorf("failed to append row: %w", err)
				}
			}

			return nil
		},
		plain: func(w io.Writer) error {
			for _, info := range infos {
				marker := " "
				if info.Current {
					marker = "*"
				}

				_, _ = fmt.Fprintf(w, "%s %s\t%s\n", marker, info.Name, info.Endpoint)
			}

			return nil
		},
	}
}
