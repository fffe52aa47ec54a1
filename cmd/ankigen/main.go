package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cli/cmd"
)

func main() {
	// An interrupt cancels the run at the next stage boundary instead of
	// killing it mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
