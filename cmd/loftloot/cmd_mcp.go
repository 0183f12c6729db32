package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loftloot/loftloot/internal/mcptools"
)

func runMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file (selects the feed source)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	engine, logger, closeEngine := loadEngine(*configPath)
	defer closeEngine()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol; zap logs to stderr.
	if err := mcptools.New(engine, logger.Named("mcp")).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "mcp server: %v\n", err)
		os.Exit(1)
	}
}
