package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gupta362/project-forge/internal/service"
)

// ChatCmd returns the chat command
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <project>",
		Short: "Open an interactive session with a project",
		Long: `Open an interactive chat session with a project. Special commands:

  /upload <path>   Upload and index a document
  /remove <name>   Remove an uploaded document
  /artifact        Print the latest rendered artifact
  /quit            Exit the session`,
		Args: cobra.ExactArgs(1),
		RunE: runChat,
	}

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	_, log, manager, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	project, err := manager.Open(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// A brand-new project gets the scripted greeting before the first prompt.
	if project.Session.TurnCount == 0 && len(project.Session.Messages) == 0 {
		greeting, err := project.ProcessTurn(ctx, service.PrimingTurn)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", greeting)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprintf(out, "\n[%s] > ", project.Name)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil

		case line == "/artifact":
			if artifact := project.LatestArtifact(); artifact != "" {
				fmt.Fprintf(out, "\n%s\n", artifact)
			} else {
				fmt.Fprintln(out, "no artifact rendered yet")
			}

		case strings.HasPrefix(line, "/upload "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/upload "))
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(out, "read %s: %v\n", path, err)
				continue
			}
			entry, err := project.Upload(ctx, filepath.Base(path), data)
			if err != nil {
				fmt.Fprintf(out, "upload failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "uploaded %s (%d chunks)\n", entry.Filename, entry.ChunkCount)

		case strings.HasPrefix(line, "/remove "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/remove "))
			if err := project.RemoveFile(ctx, name); err != nil {
				fmt.Fprintf(out, "remove failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "removed %s\n", name)

		default:
			reply, err := project.ProcessTurn(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "turn failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\n%s\n", reply)
		}
	}

	return scanner.Err()
}
