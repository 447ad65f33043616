package main

import (
	"os"

	"github.com/wonny/aegis-advisor/backend/cmd/advisor/commands"
)

// main is the entry point for the advisor CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/advisor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
