package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

const queryFlagUsage = "extra query argument NAME=VALUE (repeatable)"

// optionTokens returns the argument list options for the set flags.
func optionTokens(flags map[string]bool) []string {
	var options []string

	for _, name := range []string{etcd.OptRaw, etcd.OptNoValue} {
		if flags[name] {
			options = append(options, name)
		}
	}

	return options
}

// printResult prints a non-empty operation result on its own line.
func printResult(w io.Writer, result string) {
	if result == "" {
		return
	}

	_, _ = fmt.Fprintln(w, result)
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		raw     bool
		queries []string
	)

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Read a key",
		Long:  "Print the value of a key, or with --raw the response body as received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := buildArgs(optionTokens(map[string]bool{etcd.OptRaw: raw}), queries)
			if err != nil {
				return err
			}

			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			value, err := client.Read(cmd.Context(), args[0], tokens...)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body as received")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, queryFlagUsage)

	return cmd
}

// NewSetCommand creates the set command.
func NewSetCommand() *cobra.Command {
	var (
		raw     bool
		noValue bool
		ttl     int
		queries []string
	)

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Write a key",
		Long:  "Write a key and print the value it replaced, if any",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !noValue {
				return constants.ErrValueRequired
			}

			if ttl > 0 {
				queries = append(queries, "ttl="+strconv.Itoa(ttl))
			}

			tokens, err := buildArgs(optionTokens(map[string]bool{etcd.OptRaw: raw, etcd.OptNoValue: noValue}), queries)
			if err != nil {
				return err
			}

			value := ""
			if len(args) == 2 {
				value = args[1]
			}

			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			prev, err := client.Write(cmd.Context(), args[0], value, tokens...)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), prev)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body as received")
	cmd.Flags().BoolVar(&noValue, "no-value", false, "do not send a value")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "expire the key after this many seconds")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, queryFlagUsage)

	return cmd
}

// NewRmCommand creates the rm command.
func NewRmCommand() *cobra.Command {
	var (
		raw     bool
		queries []string
	)

	cmd := &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"delete"},
		Short:   "Delete a key",
		Long:    "Delete a key and print the value it held",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := buildArgs(optionTokens(map[string]bool{etcd.OptRaw: raw}), queries)
			if err != nil {
				return err
			}

			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			prev, err := client.Delete(cmd.Context(), args[0], tokens...)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), prev)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body as received")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, queryFlagUsage)

	return cmd
}

// NewMkdirCommand creates the mkdir command.
func NewMkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir DIR",
		Short: "Create a directory",
		Long:  "Create a directory; fails if the key already exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			return client.Mkdir(cmd.Context(), args[0])
		},
	}
}

// NewRmdirCommand creates the rmdir command.
func NewRmdirCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rmdir DIR",
		Short: "Delete a directory",
		Long:  "Delete a directory, which must be empty unless --recursive is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			_, err = client.Rmdir(cmd.Context(), args[0], recursive)

			return err
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete the directory and everything below it")

	return cmd
}

// NewLsCommand creates the ls command.
func NewLsCommand() *cobra.Command {
	var (
		recursive bool
		pattern   string
	)

	cmd := &cobra.Command{
		Use:     "ls [DIR]",
		Aliases: []string{"glob"},
		Short:   "List a directory",
		Long:    "List a directory, optionally recursively, keeping entries whose last path segment matches --pattern",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}

			client, release, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			entries, err := client.Glob(cmd.Context(), dir, recursive, pattern)
			if err != nil {
				return err
			}

			return entriesRenderer(entries).render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", etcd.DefaultPattern, "glob matched against the last path segment")

	return cmd
}

func entriesRenderer(entries []etcd.FlatEntry) renderer {
	if entries == nil {
		entries = []etcd.FlatEntry{}
	}

	return renderer{
		value: entries,
		table: func(table *tablewriter.Table) error {
			table.Header("Path", "Type", "Value")

			for _, entry := range entries {
				kind := "key"
				if entry.IsDir {
					kind = "dir"
				}

				err := table.Append([]string{entry.Path, kind, entry.Value})
				if err != nil {
					return fmt.Errorf("failed to append row: %w", err)
				}
			}

			return nil
		},
		plain: func(w io.Writer) error {
			for _, entry := range entries {
				if entry.IsDir {
					_, _ = fmt.Fprintln(w, entry.Path+"/")

					continue
				}

				_, _ = fmt.Fprintf(w, "%s\t%s\n", entry.Path, entry.Value)
			}

			return nil
		},
	}
}
