// Package stdio implements a single-connection MCP transport over a pair of
// byte streams, by default the process' stdin and stdout. It is intended for
// embedding servers as subprocesses, where spawning a child process and piping
// framed JSON is simpler than running an HTTP server.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Framing          : Content-Length header, blank line, N bytes of JSON
//	Delivery         : one reader goroutine, callbacks in arrival order
//	Schema           : opaque; messages are handed over as json.RawMessage
//
// Each frame on the wire looks like:
//
//	Content-Length: 24\r\n
//	\r\n
//	{"id":1,"method":"ping"}
//
// No delimiter follows the body; the next header starts immediately. The
// length is the body's byte count, not its character count.
//
// Example:
//
//	t := stdio.New(stdio.WithLogger(logger))
//	t.SetObserver(stdio.ObserverFuncs{
//	    Message: func(msg json.RawMessage) { /* dispatch */ },
//	    Error:   func(err error) { logger.Warn("transport", slog.String("err", err.Error())) },
//	})
//	if err := t.Start(ctx); err != nil { log.Fatal(err) }
//	<-t.Done()
//
// The transport does not interpret messages. Request/response correlation and
// method dispatch are the job of the caller (see package mcpserver).
package stdio
