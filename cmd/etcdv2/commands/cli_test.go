package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// These tests share the global viper instance and must not run in parallel.

type stubServer struct {
	*httptest.Server

	mu       sync.Mutex
	lastForm url.Values
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()

	stub := &stubServer{}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(stub.Close)

	return stub
}

func (s *stubServer) serve(writer http.ResponseWriter, request *http.Request) {
	_ = request.ParseForm()

	s.mu.Lock()
	s.lastForm = request.Form
	s.mu.Unlock()

	switch {
	case request.URL.Path == "/v2/machines":
		_, _ = io.WriteString(writer, "http://10.0.0.1:4001, http://10.0.0.2:4001")
	case request.URL.Path == "/v2/keys/missing":
		writer.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(writer, `{"errorCode":100,"message":"Key not found","cause":"/missing","index":3}`)
	case request.URL.Path == "/v2/keys/dir":
		_, _ = io.WriteString(writer, `{"action":"get","node":{"key":"/dir","dir":true,"nodes":[`+
			`{"key":"/dir/a.txt","value":"1"},{"key":"/dir/sub","dir":true},{"key":"/dir/b.log","value":"2"}]}}`)
	case request.Method == http.MethodGet:
		_, _ = io.WriteString(writer, `{"action":"get","node":{"key":"/greeting","value":"hello"}}`)
	case request.Method == http.MethodPut:
		_, _ = io.WriteString(writer, `{"action":"set","node":{"key":"/k","value":"new"},"prevNode":{"key":"/k","value":"old"}}`)
	case request.Method == http.MethodDelete:
		_, _ = io.WriteString(writer, `{"action":"delete","node":{"key":"/k"},"prevNode":{"key":"/k","value":"old"}}`)
	}
}

func (s *stubServer) form() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastForm
}

func (s *stubServer) hostPort(t *testing.T) (string, string) {
	t.Helper()

	parsed, err := url.Parse(s.URL)
	require.NoError(t, err)

	return parsed.Hostname(), parsed.Port()
}

// execute runs the CLI with a fresh viper and a config file private to the test.
func execute(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()

	var out bytes.Buffer

	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", configFile, "--output", constants.FormatPlain}, args...))

	err := root.Execute()

	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "config.yml")
}

func TestCLI_KeyCommands(t *testing.T) {
	stub := newStubServer(t)
	host, port := stub.hostPort(t)
	configFile := tempConfig(t)

	run := func(args ...string) (string, error) {
		return execute(t, configFile, append([]string{"--host", host, "--port", port}, args...)...)
	}

	out, err := run("get", "/greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = run("get", "/greeting", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, `"action":"get"`)

	_, err = run("get", "/missing")
	require.Error(t, err)
	assert.True(t, etcd.IsKeyNotFound(err))

	out, err = run("set", "/k", "new", "--ttl", "30", "-q", "prevValue=-raw")
	require.NoError(t, err)
	assert.Equal(t, "old\n", out)
	assert.Equal(t, "new", stub.form().Get("value"))
	assert.Equal(t, "30", stub.form().Get("ttl"))
	assert.Equal(t, "-raw", stub.form().Get("prevValue"))

	_, err = run("set", "/k", "--no-value", "-q", "dir=true")
	require.NoError(t, err)
	assert.NotContains(t, stub.form(), "value")

	_, err = run("set", "/k")
	require.ErrorIs(t, err, constants.ErrValueRequired)

	_, err = run("set", "/k", "v", "-q", "broken")
	require.ErrorIs(t, err, constants.ErrInvalidQueryArgument)

	out, err = run("rm", "/k")
	require.NoError(t, err)
	assert.Equal(t, "old\n", out)

	_, err = run("mkdir", "/k")
	require.NoError(t, err)
	assert.Equal(t, "true", stub.form().Get("dir"))

	_, err = run("rmdir", "/k", "-r")
	require.NoError(t, err)
	assert.Equal(t, "true", stub.form().Get("recursive"))

	out, err = run("machines")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:4001, http://10.0.0.2:4001\n", out)

	out, err = run("leader")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:4001, http://10.0.0.2:4001\n", out)
}

func TestCLI_Ls(t *testing.T) {
	stub := newStubServer(t)
	host, port := stub.hostPort(t)
	configFile := tempConfig(t)

	out, err := execute(t, configFile, "--host", host, "--port", port, "ls", "/dir")
	require.NoError(t, err)
	assert.Equal(t, "/dir/\n/dir/a.txt\t1\n/dir/sub/\n/dir/b.log\t2\n", out)

	out, err = execute(t, configFile, "--host", host, "--port", port, "ls", "/dir", "-p", "*.txt", "-o", "json")
	require.NoError(t, err)

	var entries []etcd.FlatEntry

	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []etcd.FlatEntry{{Path: "/dir/a.txt", Value: "1"}}, entries)

	out, err = execute(t, configFile, "--host", host, "--port", port, "ls", "/dir", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "/dir/b.log")
	assert.Contains(t, strings.ToUpper(out), "PATH")

	_, err = execute(t, configFile, "--host", host, "--port", port, "ls", "/dir", "-o", "xml")
	require.ErrorIs(t, err, constants.ErrUnknownOutputFormat)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCLI_Contexts(t *testing.T) {
	stub := newStubServer(t)
	configFile := tempConfig(t)

	out, err := execute(t, configFile, "contexts", "add", "local", stub.URL, "--timeout", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, "Added context local")

	_, err = execute(t, configFile, "contexts", "add", "local", stub.URL)
	require.ErrorIs(t, err, constants.ErrContextAlreadyExists)

	_, err = execute(t, configFile, "contexts", "add", "other", "https://etcd.example.com:2379")
	require.NoError(t, err)

	_, err = execute(t, configFile, "contexts", "add", "broken", "ftp://h:1")
	require.Error(t, err)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)

	var saved Config

	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "local", saved.CurrentContext)
	require.Contains(t, saved.Contexts, "other")
	assert.Equal(t, "https://etcd.example.com:2379", saved.Contexts["other"].Endpoint)

	// The first context became current, so no --host is needed.
	out, err = execute(t, configFile, "get", "/greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = execute(t, configFile, "contexts", "list")
	require.NoError(t, err)
	assert.Equal(t, "* local\t"+stub.URL+"\n  other\thttps://etcd.example.com:2379\n", out)

	out, err = execute(t, configFile, "contexts", "show", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: local")
	assert.Contains(t, out, "timeout: 5s")

	out, err = execute(t, configFile, "--context", "other", "--port", "4001", "contexts", "show", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"endpoint": "https://etcd.example.com:4001"`)

	_, err = execute(t, configFile, "contexts", "remove", "local")
	require.ErrorIs(t, err, constants.ErrCannotRemoveCurrent)

	_, err = execute(t, configFile, "contexts", "use", "other")
	require.NoError(t, err)

	_, err = execute(t, configFile, "contexts", "use", "nope")
	require.ErrorIs(t, err, constants.ErrContextNotFound)

	out, err = execute(t, configFile, "contexts", "remove", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed context local")

	_, err = execute(t, configFile, "--context", "local", "get", "/greeting")
	require.ErrorIs(t, err, constants.ErrContextNotFound)
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, tempConfig(t), "version", "-o", "json")
	require.NoError(t, err)

	var info VersionInfo

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Built: "2026-01-01"}, info)

	out, err = execute(t, tempConfig(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3 (commit abc123, built 2026-01-01)\n", out)
}
