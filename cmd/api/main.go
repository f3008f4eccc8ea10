package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/treasurymatch/treasury-match/internal/cli"
	"github.com/treasurymatch/treasury-match/internal/infrastructure/config"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnv()
	if flags.Config != "" {
		cfg = config.LoadOrEnvWithPath(flags.Config)
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
