// Package main is the entry point for the planr CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	container, err := app.New(cwd)
	if err != nil {
		// Help and version still work with a broken config
		if canRunWithoutContainer(os.Args[1:]) {
			return cli.NewRootCommand(nil, version).Execute()
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	return cli.NewRootCommand(container, version).Execute()
}

func canRunWithoutContainer(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion":
		return true
	case "config":
		if len(args) > 1 && (args[1] == "template" || args[1] == "keygen") {
			return true
		}
	}
	for _, arg := range args {
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" ||
			strings.HasPrefix(arg, "--help-") {
			return true
		}
	}
	return false
}
