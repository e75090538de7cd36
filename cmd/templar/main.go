package main

import (
	"github.com/joho/godotenv"

	"github.com/templar-dev/templar/internal/cli"
)

func main() {
	// Local .env files are a convenient place for TEMPLAR_GITHUB_TOKEN.
	_ = godotenv.Load()

	cli.Execute()
}
