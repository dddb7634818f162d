package client

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// fakeEtcd is an in-memory keys API good enough for client tests.
type fakeEtcd struct {
	mu       sync.Mutex
	root     *fakeNode
	index    uint64
	machines string
	lastForm url.Values
}

type fakeNode struct {
	key      string
	dir      bool
	value    string
	children []*fakeNode
}

func newFakeEtcd() *fakeEtcd {
	return &fakeEtcd{
		root:     &fakeNode{key: "/", dir: true},
		machines: "http://127.0.0.1:4001, http://127.0.0.1:4002",
	}
}

// start serves the fake and returns a client connected to it.
func (f *fakeEtcd) start(t *testing.T, config *etcd.Config) *Client {
	t.Helper()

	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	client, err := New(testConnection(t, server.URL), config)
	require.NoError(t, err)

	return client
}

func testConnection(t *testing.T, serverURL string) *etcd.Connection {
	t.Helper()

	parsed, err := url.Parse(serverURL)
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(parsed.Host)
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	conn, err := etcd.NewConnection(etcd.ConnectionOptions{Host: host, Port: port, Protocol: "http", Timeout: -1})
	require.NoError(t, err)

	return conn
}

// form returns the parameters of the last keys request.
func (f *fakeEtcd) form() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastForm
}

func (f *fakeEtcd) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if request.URL.Path == "/v2/machines" {
		_, _ = writer.Write([]byte(f.machines))

		return
	}

	if !strings.HasPrefix(request.URL.Path, "/v2/keys") {
		http.NotFound(writer, request)

		return
	}

	_ = request.ParseForm()
	f.lastForm = request.Form

	key := path.Clean("/" + strings.TrimPrefix(request.URL.Path, "/v2/keys"))

	switch request.Method {
	case http.MethodGet:
		f.get(writer, key, request.Form.Get("recursive") == "true")
	case http.MethodPut:
		f.put(writer, key, request.Form)
	case http.MethodDelete:
		f.delete(writer, key, request.Form)
	default:
		writer.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeEtcd) get(writer http.ResponseWriter, key string, recursive bool) {
	node, _ := f.find(key)
	if node == nil {
		f.fail(writer, http.StatusNotFound, etcd.ErrorCodeKeyNotFound, "Key not found", key)

		return
	}

	depth := 1
	if recursive {
		depth = -1
	}

	f.reply(writer, http.StatusOK, "get", node.toNode(depth), nil)
}

func (f *fakeEtcd) put(writer http.ResponseWriter, key string, form url.Values) {
	existing, parent := f.find(key)

	if prev := form.Get("prevValue"); prev != "" && (existing == nil || existing.value != prev) {
		f.fail(writer, http.StatusPreconditionFailed, etcd.ErrorCodeTestFailed, "Compare failed", key)

		return
	}

	if form.Get("dir") == "true" {
		if existing != nil {
			f.fail(writer, http.StatusForbidden, etcd.ErrorCodeNotFile, "Not a file", key)

			return
		}

		created := f.create(parent, key)
		created.dir = true
		f.reply(writer, http.StatusCreated, "set", created.toNode(0), nil)

		return
	}

	if existing != nil && existing.dir {
		f.fail(writer, http.StatusForbidden, etcd.ErrorCodeNotFile, "Not a file", key)

		return
	}

	var prevNode *etcd.Node

	status := http.StatusCreated

	if existing == nil {
		existing = f.create(parent, key)
	} else {
		prevNode = existing.toNode(0)
		status = http.StatusOK
	}

	existing.value = form.Get("value")
	f.reply(writer, status, "set", existing.toNode(0), prevNode)
}

func (f *fakeEtcd) delete(writer http.ResponseWriter, key string, form url.Values) {
	existing, parent := f.find(key)
	if existing == nil {
		f.fail(writer, http.StatusNotFound, etcd.ErrorCodeKeyNotFound, "Key not found", key)

		return
	}

	recursive := form.Get("recursive") == "true"

	if existing.dir && !recursive {
		if form.Get("dir") != "true" {
			f.fail(writer, http.StatusForbidden, etcd.ErrorCodeNotFile, "Not a file", key)

			return
		}

		if len(existing.children) > 0 {
			f.fail(writer, http.StatusForbidden, etcd.ErrorCodeDirNotEmpty, "Directory not empty", key)

			return
		}
	}

	for idx, child := range parent.children {
		if child == existing {
			parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

			break
		}
	}

	f.reply(writer, http.StatusOK, "delete", &etcd.Node{Key: key, Dir: existing.dir}, existing.toNode(0))
}

// find returns the node at key and the parent it lives, or would live, in.
func (f *fakeEtcd) find(key string) (*fakeNode, *fakeNode) {
	if key == "/" {
		return f.root, nil
	}

	parent := f.root
	segments := strings.Split(strings.Trim(key, "/"), "/")

	for idx, segment := range segments {
		var next *fakeNode

		for _, child := range parent.children {
			if path.Base(child.key) == segment {
				next = child

				break
			}
		}

		if next == nil {
			if idx < len(segments)-1 {
				return nil, nil
			}

			return nil, parent
		}

		if idx == len(segments)-1 {
			return next, parent
		}

		parent = next
	}

	return nil, parent
}

// create adds key below parent, creating missing directories on the way.
func (f *fakeEtcd) create(parent *fakeNode, key string) *fakeNode {
	if parent == nil {
		parent = f.root

		segments := strings.Split(strings.Trim(key, "/"), "/")
		for idx := range segments[:len(segments)-1] {
			dirKey := "/" + strings.Join(segments[:idx+1], "/")

			existing, _ := f.find(dirKey)
			if existing == nil {
				existing = &fakeNode{key: dirKey, dir: true}
				parent.children = append(parent.children, existing)
			}

			parent = existing
		}
	}

	node := &fakeNode{key: key}
	parent.children = append(parent.children, node)

	return node
}

func (n *fakeNode) toNode(depth int) *etcd.Node {
	node := &etcd.Node{Key: n.key, Dir: n.dir}
	if n.key == "/" {
		node.Key = ""
	}

	if !n.dir {
		value := n.value
		node.Value = &value

		return node
	}

	if depth == 0 {
		return node
	}

	for _, child := range n.children {
		node.Nodes = append(node.Nodes, child.toNode(depth-1))
	}

	return node
}

func (f *fakeEtcd) reply(writer http.ResponseWriter, status int, action string, node, prevNode *etcd.Node) {
	f.index++

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(etcd.Response{Action: action, Node: node, PrevNode: prevNode})
}

func (f *fakeEtcd) fail(writer http.ResponseWriter, status, code int, message, cause string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]interface{}{
		"errorCode": code,
		"message":   message,
		"cause":     cause,
		"index":     f.index,
	})
}
