// Package aidboxclient is the entry point for building an aidbox.Client.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
//	  "github.com/fivetwenty-io/aidbox-client/pkg/aidboxclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With a token you already have:
//	  cli, err := aidboxclient.NewWithToken(ctx, "https://box.example.com", "eyJhbGciOi...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an account; the credentials are exchanged for a token right away:
//	  cli, err = aidboxclient.NewWithPassword(ctx, "box.example.com", "jane@example.com", "secret")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  patients, err := cli.Resources("Patient").Where("name", "Jane").Limit(10).All(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = patients
//	}
//
// # Schema caching
//
// Attribute schemas are fetched once per client. Set Config.SchemaCache to
// share them between processes through a NATS key-value bucket:
//
//	cli, err := aidboxclient.New(ctx, &aidbox.Config{
//	  Host:  "https://box.example.com",
//	  Token: token,
//	  SchemaCache: &aidbox.CacheConfig{
//	    Type: aidbox.CacheTypeNATS,
//	    NATS: &aidbox.NATSKVConfig{URL: "nats://127.0.0.1:4222", TTL: time.Hour},
//	  },
//	})
package aidboxclient
