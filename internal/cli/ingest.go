package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <project> <file>...",
		Short: "Upload and index documents into a project",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	_, log, manager, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	project, err := manager.Open(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		entry, err := project.Upload(cmd.Context(), filepath.Base(path), data)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Fprintf(out, "ingested %s (%d chunks)\n", entry.Filename, entry.ChunkCount)
	}

	return nil
}
