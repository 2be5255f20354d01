package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/secmon-lab/phenodash/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		slog.Error("phenodash failed", "error", err)
		os.Exit(1)
	}
}
