// Package client provides a load generator for the static server.
//
// The Client speaks the server's one-line request protocol over raw TCP,
// cycling through a list of paths with a bounded number of concurrent
// connections and an optional request rate. It collects metrics about the
// generated load, per path and overall.
//
// # Basic Usage
//
//	config := client.DefaultConfig()
//	config.Requests = 1000
//	config.RPS = 200
//	cl := client.New(config)
//
//	report, err := cl.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	report.Render(os.Stdout)
//
// # Configuration
//
// The Config struct allows tuning:
//   - Workers: concurrent connections
//   - Requests: total requests to send
//   - RPS: requests per second (0 = unlimited)
//   - Paths: request paths, used round-robin
//   - Timeout: per-request deadline covering every response on the connection
//
// A request to /async stays open until the delayed second response arrives,
// so its latency includes the server's async delay.
package client
