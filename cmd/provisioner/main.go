package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Execute(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}
