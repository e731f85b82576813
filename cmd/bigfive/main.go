// Package main implements bigfive, a CLI to score Big Five answer sets and
// generate insight narratives without running the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bigfive",
		Short:         "Big Five personality scoring and insights",
		Long:          "bigfive scores 44 or 50 item Big Five questionnaires and generates a personalized insight narrative, remotely when an LLM key is configured or with the local fallback otherwise.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newInsightCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
