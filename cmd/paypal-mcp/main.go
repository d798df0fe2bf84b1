// Command paypal-mcp serves PayPal operations as MCP tools over stdin/stdout.
//
// Usage:
//
//	paypal-mcp --tools=all --access-token=$PAYPAL_ACCESS_TOKEN [--paypal-environment=production]
//
// Stdout carries protocol frames only; every log line goes to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/paypal-mcp-server-go/internal/config"
	"github.com/ggoodman/paypal-mcp-server-go/internal/logctx"
	"github.com/ggoodman/paypal-mcp-server-go/mcpserver"
	"github.com/ggoodman/paypal-mcp-server-go/stdio"
	"github.com/ggoodman/paypal-mcp-server-go/toolkit"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "\nError initializing PayPal MCP server:\n   %v\n\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := config.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(logctx.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.LogLevel})))
	slog.SetDefault(logger)

	tk, err := toolkit.NewClient(
		toolkit.Config{AccessToken: opts.AccessToken, Configuration: opts.Configuration()},
		toolkit.WithLogger(logger),
		toolkit.WithUserAgent("paypal-mcp-server-go/"+version),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := stdio.New(
		stdio.WithIO(os.Stdin, os.Stdout),
		stdio.WithLogger(logger),
		stdio.WithMaxFrameSize(opts.MaxFrameBytes),
	)
	srv := mcpserver.New(tk,
		mcpserver.WithServerInfo("paypal-mcp-server", version),
		mcpserver.WithLogger(logger),
	)

	logger.Info("PayPal MCP Server running on stdio", slog.String("mode", opts.Mode()), slog.Int("tools", len(tk.Tools())))
	if err := srv.Serve(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
