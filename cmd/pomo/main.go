package main

import (
	"fmt"
	"os"

	app "github.com/focusvault/pomo/internal"
	"github.com/focusvault/pomo/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	vaultRoot := app.ResolveVaultRoot()

	a, err := app.NewApp(vaultRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing pomo: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close() }()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
