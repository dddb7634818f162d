package etcd

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultPattern matches every node.
const DefaultPattern = "*"

var errMissingKey = errors.New("node has no key")

// Flatten walks node depth-first and returns one entry per node whose last
// path segment matches pattern. A node's own entry precedes the entries of its
// children, and children keep the order the service returned them in. An
// empty pattern matches everything.
//
// A nil child or a child without a key fails the whole call: a truncated
// listing is never returned.
func Flatten(node *Node, pattern string) ([]FlatEntry, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	_, err := path.Match(pattern, "")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	if node == nil {
		return nil, &MalformedResponseError{Err: errMissingKey}
	}

	// The keyspace root comes back without a key.
	if node.Key == "" {
		root := *node
		root.Key = "/"
		node = &root
	}

	var entries []FlatEntry

	err = flatten(node, pattern, &entries)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func flatten(node *Node, pattern string, entries *[]FlatEntry) error {
	matched, err := path.Match(pattern, lastSegment(node.Key))
	if err != nil {
		return fmt.Errorf("matching %s: %w", node.Key, err)
	}

	if matched {
		entry := FlatEntry{Path: node.Key, IsDir: node.Dir}
		if !node.Dir {
			entry.Value = node.StringValue()
		}

		*entries = append(*entries, entry)
	}

	for _, child := range node.Nodes {
		if child == nil || child.Key == "" {
			return &MalformedResponseError{Err: fmt.Errorf("child of %s: %w", node.Key, errMissingKey)}
		}

		err := flatten(child, pattern, entries)
		if err != nil {
			return err
		}
	}

	return nil
}

func lastSegment(key string) string {
	trimmed := strings.TrimRight(key, "/")
	if trimmed == "" {
		return ""
	}

	return path.Base(trimmed)
}
