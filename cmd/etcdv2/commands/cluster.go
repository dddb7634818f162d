package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// NewMachinesCommand creates the machines command.
func NewMachinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "machines",
		Short: "List cluster machines",
		Long:  "Print the comma separated peer URLs reported by the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printClusterInfo(cmd, etcd.Client.Machines)
		},
	}
}

// NewLeaderCommand creates the leader command.
func NewLeaderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leader",
		Short: "Show the cluster leader",
		Long:  "Print what the endpoint reports for the cluster leader",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printClusterInfo(cmd, etcd.Client.Leader)
		},
	}
}

func printClusterInfo(cmd *cobra.Command, query func(etcd.Client, context.Context) (string, error)) error {
	client, release, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer release()

	info, err := query(client, cmd.Context())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)

	return nil
}
