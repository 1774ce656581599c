// Command assignctl administers the assignment module from the command line:
// it manages the installed sub-plugins and moves assignments between courses
// through backup files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-assign/internal/app"
	"github.com/noah-isme/gema-assign/internal/config"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/service"
)

const version = "v0.3"

// operator is the identity the CLI acts as; it has site administration rights.
var operator = service.Viewer{Role: models.RoleAdmin}

func main() {
	cmdRoot := &cobra.Command{
		Use:           "assignctl",
		Short:         "administer the assignment module",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmdRoot.PersistentFlags().Bool("verbose", false, "log at debug level")

	cmdVersion := &cobra.Command{
		Use:   "version",
		Short: "print the version number of assignctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "assignctl "+version)
		},
	}
	cmdRoot.AddCommand(cmdVersion)
	cmdRoot.AddCommand(pluginsCommand())
	cmdRoot.AddCommand(backupCommand())
	cmdRoot.AddCommand(restoreCommand())

	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "assignctl:", err)
		os.Exit(1)
	}
}

// withContainer connects to the configured backends, wires the application and
// runs fn against it.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := config.LoadCommand()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backends, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	container, err := app.Build(ctx, cfg, backends, logger)
	if err != nil {
		return err
	}
	return fn(ctx, container)
}
