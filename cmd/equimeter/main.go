package main

import (
	"os"

	"github.com/wonny/equimeter/cmd/equimeter/commands"
)

// main is the entry point for the Equimeter CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/equimeter [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
