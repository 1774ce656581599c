package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-assign/internal/app"
)

func backupCommand() *cobra.Command {
	var output string

	cmdBackup := &cobra.Command{
		Use:   "backup <assignment-id>",
		Short: "export an assignment with its submissions and feedback as XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignmentID, err := parseID("assignment id", args[0])
			if err != nil {
				return err
			}

			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				var out io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					file, err := os.Create(output)
					if err != nil {
						return err
					}
					defer file.Close()
					out = file
				}

				if err := c.Services.Backups.Export(ctx, operator, assignmentID, out); err != nil {
					return err
				}
				if output != "" && output != "-" {
					c.Logger.Info().Uint("assignment_id", assignmentID).Str("file", output).Msg("backup written")
				}
				return nil
			})
		},
	}
	cmdBackup.Flags().StringVarP(&output, "output", "o", "", "write the backup to this file instead of stdout")

	return cmdBackup
}

func restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <course-id> <file>",
		Short: "restore an assignment backup into a course",
		Long: "   Reads the backup from file, or from stdin when file is -.\n" +
			"   The assignment is created as new; every id in the backup is remapped.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID("course id", args[0])
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[1] != "-" {
				file, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				restored, err := c.Services.Backups.Restore(ctx, operator, courseID, in)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "restored assignment %d into course %d\n", restored.AssignmentID, courseID)
				names := make([]string, 0, len(restored.Mapped))
				for name := range restored.Mapped {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %-24s %d\n", name, restored.Mapped[name])
				}
				return nil
			})
		},
	}
}

func parseID(label, value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", label, value)
	}
	return uint(id), nil
}
