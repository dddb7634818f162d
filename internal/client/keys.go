package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

var errNoNode = errors.New("response has no node")

func keyPath(key string) string {
	return constants.KeysPath + "/" + strings.TrimLeft(key, "/")
}

// parseResponse decodes a keys API body. requireNode rejects bodies without
// a node.
func parseResponse(body []byte, requireNode bool) (*etcd.Response, error) {
	var result etcd.Response

	err := json.Unmarshal(body, &result)
	if err != nil {
		return nil, &etcd.MalformedResponseError{Body: string(body), Err: err}
	}

	if requireNode && result.Node == nil {
		return nil, &etcd.MalformedResponseError{Body: string(body), Err: errNoNode}
	}

	return &result, nil
}

// Read implements etcd.Client.Read.
func (c *Client) Read(ctx context.Context, key string, args ...string) (string, error) {
	parsed, err := etcd.SeparateArgs(args, etcd.ReadFlags...)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	resp, err := c.httpClient.Get(ctx, keyPath(key), parsed.Query)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	if parsed.Has(etcd.OptRaw) {
		return string(resp.Body), nil
	}

	result, err := parseResponse(resp.Body, true)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	if result.Node.IsDir() {
		return "", &etcd.DirectoryNotReadableError{Key: key}
	}

	return result.Node.StringValue(), nil
}

// Write implements etcd.Client.Write.
func (c *Client) Write(ctx context.Context, key, value string, args ...string) (string, error) {
	parsed, err := etcd.SeparateArgs(args, etcd.WriteFlags...)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}

	sendValue := !parsed.Has(etcd.OptNoValue) && !parsed.Has(etcd.OptIgnore)
	if sendValue {
		parsed.PrependQuery(constants.QueryValue, value)
	} else {
		value = ""
	}

	resp, err := c.httpClient.Put(ctx, keyPath(key), parsed.Query)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}

	if parsed.Has(etcd.OptRaw) {
		c.publish(ctx, etcd.ActionSet, key, value, "")

		return string(resp.Body), nil
	}

	result, err := parseResponse(resp.Body, false)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}

	prevValue := result.PrevNode.StringValue()
	c.publish(ctx, etcd.ActionSet, key, value, prevValue)

	return prevValue, nil
}

// Delete implements etcd.Client.Delete.
func (c *Client) Delete(ctx context.Context, key string, args ...string) (string, error) {
	parsed, err := etcd.SeparateArgs(args, etcd.DeleteFlags...)
	if err != nil {
		return "", fmt.Errorf("deleting %s: %w", key, err)
	}

	resp, err := c.httpClient.Delete(ctx, keyPath(key), parsed.Query)
	if err != nil {
		return "", fmt.Errorf("deleting %s: %w", key, err)
	}

	if parsed.Has(etcd.OptRaw) {
		c.publish(ctx, etcd.ActionDelete, key, "", "")

		return string(resp.Body), nil
	}

	result, err := parseResponse(resp.Body, false)
	if err != nil {
		return "", fmt.Errorf("deleting %s: %w", key, err)
	}

	prevValue := result.PrevNode.StringValue()
	c.publish(ctx, etcd.ActionDelete, key, "", prevValue)

	return prevValue, nil
}

// Mkdir implements etcd.Client.Mkdir.
func (c *Client) Mkdir(ctx context.Context, dir string) error {
	_, err := c.Write(ctx, dir, "", etcd.OptIgnore, etcd.Separator, constants.QueryDir, constants.BoolTrue)

	return err
}

// Rmdir implements etcd.Client.Rmdir.
func (c *Client) Rmdir(ctx context.Context, dir string, recursive bool) (string, error) {
	query := constants.QueryDir
	if recursive {
		query = constants.QueryRecursive
	}

	return c.Delete(ctx, dir, etcd.OptRaw, etcd.Separator, query, constants.BoolTrue)
}

// Glob implements etcd.Client.Glob.
func (c *Client) Glob(ctx context.Context, dir string, recursive bool, pattern string) ([]etcd.FlatEntry, error) {
	args := []string{etcd.OptRaw, etcd.Separator}
	if recursive {
		args = append(args, constants.QueryRecursive, constants.BoolTrue)
	}

	body, err := c.Read(ctx, dir, args...)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse([]byte(body), true)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	entries, err := etcd.Flatten(result.Node, pattern)
	if err != nil {
		var malformed *etcd.MalformedResponseError
		if errors.As(err, &malformed) {
			malformed.Body = body
		}

		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	return entries, nil
}
