// Package mcpserver answers MCP requests arriving over a stdio.Transport by
// delegating tool listing and execution to a toolkit.Toolkit.
//
// The server understands the subset of MCP a tools-only server needs:
// initialize, ping, tools/list, tools/call and the initialized and cancelled
// notifications. Decoded frames are handed from the transport's reader
// goroutine to the dispatch loop over a channel; tool calls then run on their
// own goroutines so a slow PayPal request never blocks pings or
// cancellations.
//
// Example:
//
//	tk, _ := toolkit.NewClient(toolkit.Config{AccessToken: token, Configuration: cfg})
//	srv := mcpserver.New(tk, mcpserver.WithServerInfo("paypal", "0.1.0"))
//	if err := srv.Serve(ctx, stdio.New()); err != nil { log.Fatal(err) }
package mcpserver
