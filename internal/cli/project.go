package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ProjectCmd returns the project command group
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(projectListCmd())
	cmd.AddCommand(projectNewCmd())

	return cmd
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, manager, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			names, err := manager.List()
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects yet")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func projectNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, manager, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			project, err := manager.Open(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created project %s\n", project.Name)
			return nil
		},
	}
}
