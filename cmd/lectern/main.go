// Command lectern answers questions about course documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lectern/internal/adapters/driving/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env is normal
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
