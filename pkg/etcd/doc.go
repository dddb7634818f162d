// Package etcd provides types, interfaces, and helpers for working with the
// etcd v2 keys API.
//
// # Overview
//
// The etcd package defines the domain types (Node, Response, FlatEntry), the
// connection registry, and the Client interface. A concrete implementation of
// the client is provided by the etcdclient package, which wires transport,
// logging, and tracing. Most consumers register a connection and then open a
// client for it:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
//	  "github.com/fivetwenty-io/etcdv2-client/pkg/etcdclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  token, err := etcd.New(etcd.WithHost("10.0.0.5"), etcd.WithPort(2379))
//	  if err != nil { log.Fatal(err) }
//
//	  cli, err := etcdclient.Open(etcd.DefaultRegistry, token, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  prev, err := cli.Write(ctx, "/config/mode", "active", "ttl", "60")
//	  if err != nil { log.Fatal(err) }
//	  _ = prev
//	}
//
// # Arguments
//
// Every key operation takes a single variadic token list that mixes client
// options (tokens such as "-raw" or "-noval") and query arguments forwarded to
// the server as name/value pairs. A literal "--" token ends the options: every
// token after it is query data, even when it looks like an option. Without the
// marker, recognized options are picked out of the list wherever they appear,
// so a query value spelled like an option is consumed as that option. Use the
// marker whenever query values are not under your control.
//
// # Errors
//
// Failures are reported as typed errors: TransportError, HTTPError, APIError,
// DirectoryNotReadableError, UnknownContextError, and MalformedResponseError.
// Helpers such as IsKeyNotFound and IsCompareFailed branch on common etcd
// error codes.
//
// # Listings
//
// Glob reads a directory and flattens the returned tree into FlatEntry
// records. Flatten is exported so already-fetched trees can be flattened
// without network access.
package etcd
