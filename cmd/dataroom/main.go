package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dataroomhq/dataroom/internal/cli"
)

func main() {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
