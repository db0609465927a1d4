package main

import (
	"github.com/joho/godotenv"

	"github.com/clearclaim/patra/internal/adapters/driving/cli"
)

func main() {
	// Missing .env file is fine; secrets may come from the environment
	// directly.
	_ = godotenv.Load()

	cli.Execute()
}
