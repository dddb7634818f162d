package etcd

import (
	"time"
)

// Node represents a key or a directory returned by the keys API.
type Node struct {
	Key           string     `json:"key,omitempty"           yaml:"key,omitempty"`
	Dir           bool       `json:"dir,omitempty"           yaml:"dir,omitempty"`
	Value         *string    `json:"value,omitempty"         yaml:"value,omitempty"`
	Nodes         []*Node    `json:"nodes,omitempty"         yaml:"nodes,omitempty"`
	TTL           int64      `json:"ttl,omitempty"           yaml:"ttl,omitempty"`
	Expiration    *time.Time `json:"expiration,omitempty"    yaml:"expiration,omitempty"`
	CreatedIndex  uint64     `json:"createdIndex,omitempty"  yaml:"created_index,omitempty"`
	ModifiedIndex uint64     `json:"modifiedIndex,omitempty" yaml:"modified_index,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n != nil && n.Dir
}

// StringValue returns the node value, or an empty string when the node has none.
func (n *Node) StringValue() string {
	if n == nil || n.Value == nil {
		return ""
	}

	return *n.Value
}

// Response represents a successful keys API response body.
type Response struct {
	Action   string `json:"action"             yaml:"action"`
	Node     *Node  `json:"node,omitempty"     yaml:"node,omitempty"`
	PrevNode *Node  `json:"prevNode,omitempty" yaml:"prev_node,omitempty"`
}

// FlatEntry is one record of a flattened tree.
type FlatEntry struct {
	Path  string `json:"path"  yaml:"path"`
	IsDir bool   `json:"dir"   yaml:"dir"`
	Value string `json:"value" yaml:"value"`
}

// QueryArg is a single name/value pair sent to the server.
type QueryArg struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Event describes a mutation that completed successfully.
type Event struct {
	Action    string    `json:"action"               yaml:"action"`
	Key       string    `json:"key"                  yaml:"key"`
	Value     string    `json:"value,omitempty"      yaml:"value,omitempty"`
	PrevValue string    `json:"prev_value,omitempty" yaml:"prev_value,omitempty"`
	Endpoint  string    `json:"endpoint"             yaml:"endpoint"`
	Time      time.Time `json:"time"                 yaml:"time"`
}

// Event actions.
const (
	ActionSet    = "set"
	ActionDelete = "delete"
)
