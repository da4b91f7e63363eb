package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/aiterm/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.Options{Verbose: isVerbose()}, os.Args[1:])
	stop()
	os.Exit(code)
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("AITERM_DEBUG"), "1") || strings.EqualFold(os.Getenv("AITERM_DEBUG"), "true")
}
