package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bradykim7/pagecrawl/cmd/pagecrawl/commands"
)

func main() {
	// Create context that will be canceled on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
		<-sc
		cancel()
	}()

	commands.ExecuteContext(ctx)
}
