package main

import (
	"os"

	"github.com/wonny/finlens/backend/cmd/finlens/commands"
)

// main is the entry point for the finlens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/finlens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
