// Command facetd hosts a facet engine behind an HTTP server: game-engine
// backends connect to /ws and push state frames; Prometheus scrapes
// /metrics. It is the standalone deployment shape; embedded hosts wire
// pkg/facet and pkg/server directly instead.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "facetd",
		Short: "Reactive facet engine for remotely-owned UI state",
		Long: `facetd hosts a facet registry behind a WebSocket ingestion endpoint.

A state-owning backend (typically a game engine) connects and pushes
serialized state; UI hosts bind selectors to the registry and re-render
only the fragments whose values actually changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("facetd %s (%s)\n", version, commit)
		},
	}
}
