package etcdclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcdclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := etcdclient.New(nil, nil)
	require.ErrorIs(t, err, etcd.ErrConnectionRequired)

	conn, err := etcd.NewConnection(etcd.DefaultConnectionOptions())
	require.NoError(t, err)

	client, err := etcdclient.New(conn, nil)
	require.NoError(t, err)
	assert.Same(t, conn, client.Connection())
}

func TestOpen(t *testing.T) {
	t.Parallel()

	registry := etcd.NewRegistry()

	token, err := registry.Create(etcd.DefaultConnectionOptions())
	require.NoError(t, err)

	client, err := etcdclient.Open(registry, token, nil)
	require.NoError(t, err)
	assert.Equal(t, token, client.Connection().Token())

	_, err = etcdclient.Open(registry, "etcd-missing", nil)
	assert.ErrorAs(t, err, new(*etcd.UnknownContextError))
}

func TestParseEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint string
		want     etcd.ConnectionOptions
		wantErr  bool
	}{
		{endpoint: "http://10.0.0.1:4001", want: options("10.0.0.1", 4001, "http")},
		{endpoint: "https://etcd.local/", want: options("etcd.local", 4001, "https")},
		{endpoint: "10.0.0.1:2379", want: options("10.0.0.1", 2379, "http")},
		{endpoint: "[::1]:2379", want: options("::1", 2379, "http")},
		{endpoint: "etcd_1:2379", want: options("etcd_1", 2379, "http")},
		{endpoint: "", wantErr: true},
		{endpoint: "http://h:4001/v2", wantErr: true},
		{endpoint: "http://:4001", wantErr: true},
		{endpoint: "http://h:port", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.endpoint, func(t *testing.T) {
			t.Parallel()

			got, err := etcdclient.ParseEndpoint(testCase.endpoint)
			if testCase.wantErr {
				require.ErrorIs(t, err, etcd.ErrInvalidEndpoint)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
			assert.Equal(t, testCase.want.Protocol+"://", etcdclient.Endpoint(got)[:len(testCase.want.Protocol)+3])
		})
	}
}

func options(host string, port int, protocol string) etcd.ConnectionOptions {
	opts := etcd.DefaultConnectionOptions()
	opts.Host = host
	opts.Port = port
	opts.Protocol = protocol

	return opts
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/v2/keys/greeting", request.URL.Path)
		_, _ = io.WriteString(writer, `{"action":"get","node":{"key":"/greeting","value":"hello"}}`)
	}))
	defer server.Close()

	client, err := etcdclient.NewWithEndpoint(server.URL, nil)
	require.NoError(t, err)

	value, err := client.Read(context.Background(), "/greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	_, err = etcdclient.NewWithEndpoint("ftp://h:1", nil)
	require.Error(t, err)
}
