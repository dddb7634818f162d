package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the etcdv2 CLI",
		Args:  cobra.NoArgs,
		// Version needs neither config nor a connection.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			return renderer{
				value: info,
				table: func(table *tablewriter.Table) error {
					table.Header("Property", "Value")
					_ = table.Append("Version", info.Version)
					_ = table.Append("Commit", info.Commit)
					_ = table.Append("Built", info.Built)

					return nil
				},
				plain: func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s (commit %s, built %s)\n", info.Version, info.Commit, info.Built)

					return err
				},
			}.render(cmd.OutOrStdout())
		},
	}
}
