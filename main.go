// main is the entry point for the debtspot CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/debtspot/cmd"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code.
// Deferred cleanup runs before the process exits.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return contract.ExitCode(err)
	}
	return contract.ExitOK
}
