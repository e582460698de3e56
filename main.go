package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/lwalder/veille/pkg/cli"
)

var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
