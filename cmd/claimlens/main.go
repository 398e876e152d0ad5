package main

import (
	"os"

	"github.com/wonny/claimlens/cmd/claimlens/commands"
)

// main is the entry point for the claimlens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/claimlens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
