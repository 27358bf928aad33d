// Command outliner manages outliner databases from the command line.
//
// Build with the FTS5 extension enabled:
//
//	go build -tags sqlite_fts5 ./cmd/outliner
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/outliner/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
