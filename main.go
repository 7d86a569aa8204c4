package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ytget/ydownloader/internal/cli"
	"github.com/ytget/ydownloader/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, os.Args[1:], platform.NewConsoleStreams(), version)

	stop()
	os.Exit(code)
}
