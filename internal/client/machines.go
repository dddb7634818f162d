package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
)

// Machines implements etcd.Client.Machines. The v2 endpoint answers with a
// comma separated list of peer URLs, returned as received.
func (c *Client) Machines(ctx context.Context) (string, error) {
	resp, err := c.httpClient.Get(ctx, constants.MachinesPath, nil)
	if err != nil {
		return "", fmt.Errorf("listing machines: %w", err)
	}

	return string(resp.Body), nil
}

// Leader implements etcd.Client.Leader.
//
// TODO: switch to the dedicated leader endpoint once the client targets a
// service contract that exposes one; until then this mirrors Machines.
func (c *Client) Leader(ctx context.Context) (string, error) {
	resp, err := c.httpClient.Get(ctx, constants.MachinesPath, nil)
	if err != nil {
		return "", fmt.Errorf("querying leader: %w", err)
	}

	return string(resp.Body), nil
}
