package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gupta362/project-forge/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Forge - conversational product discovery copilot",
		Long: `Forge helps product managers move from a fuzzy problem statement to a
reviewed problem brief or solution evaluation, one conversation at a time.

Environment variables:
  FORGE_OPENAI_API_KEY   OpenAI API key (required for chat and indexing)
  FORGE_WORKSPACE_DIR    Project workspace root (default: ~/.project-forge)
  FORGE_PORT             HTTP port for serve (default: 8080)`,
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ChatCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.ProjectCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
