// Package etcdclient provides the primary entry point for constructing an
// etcd v2 keys API client that implements the etcd.Client interface.
//
// It layers the HTTP dispatcher, retries, rate limiting, tracing and mutation
// events on top of the connection registry and types defined in the etcd
// package. Most applications register a connection with etcd.New, open a
// client on its token here, then use the returned etcd.Client.
//
// Quick start
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
//
//	  token, err := etcd.New(etcd.WithHost("10.0.0.5"), etcd.WithPort(2379))
//	  if err != nil { log.Fatal(err) }
//
//	  cli, err := etcdclient.Open(nil, token, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  prev, err := cli.Write(ctx, "/config/mode", "active")
//	  if err != nil { log.Fatal(err) }
//	  log.Printf("replaced %q", prev)
//
//	  // Or straight from an endpoint, without the registry:
//	  cli, err = etcdclient.NewWithEndpoint("https://etcd.example.com:2379", &etcd.Config{
//	    RetryMax: 3,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  entries, err := cli.Glob(ctx, "/config", true, "*.yml")
//	  if err != nil { log.Fatal(err) }
//	  for _, e := range entries {
//	    log.Println(e.Path, e.Value)
//	  }
//	}
package etcdclient
