package main

import (
	"context"
	"log/slog"
	"os"

	"startupdash/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		slog.Error("startupdash failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
