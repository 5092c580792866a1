package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kirillkom/claimsense/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Install("claimctl", os.Getenv("LOG_LEVEL"))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
