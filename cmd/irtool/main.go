package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/irstream/internal/cmd/irtool"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := irtool.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
