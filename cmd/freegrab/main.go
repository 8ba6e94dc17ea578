package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(newApp()).ExecuteContext(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
		stop()
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	stop()
	os.Exit(1)
}
