package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/snipstash/snipstash/internal/config"
	"github.com/snipstash/snipstash/internal/entitlement"
	"github.com/snipstash/snipstash/internal/kv"
	"github.com/snipstash/snipstash/internal/mcp"
	"github.com/snipstash/snipstash/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "get": true, "update": true, "delete": true,
	"list": true, "copy": true, "fav": true,
	"search": true, "recent": true,
	"category": true, "trial": true, "export": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___      _      ___ _            _
  / __|_ _ (_)_ __/ __| |_ __ _ __| |_
  \__ \ ' \| | '_ \__ \  _/ _' (_-< ' \
  |___/_||_|_| .__/___/\__\__,_/__/_||_|
             |_|

  Personal snippet stash

  Usage: snipstash <command> [options]
         snipstash --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening the store (not needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, "")
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".snipstash")

	kvStore, err := kv.Open(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer kvStore.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	var gate entitlement.Gate = entitlement.NewTrial(kvStore)
	if os.Getenv("SNIPSTASH_ENTITLED") == "1" {
		gate = entitlement.Static(true)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx := context.Background()
	repo, err := store.Open(ctx, kvStore, gate, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load stash: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(repo, kvStore, baseDir)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'snipstash --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(repo, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
