package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-assign/internal/app"
	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/plugin"
)

func pluginsCommand() *cobra.Command {
	cmdPlugins := &cobra.Command{
		Use:   "plugins",
		Short: "manage submission and feedback plugins",
	}

	cmdList := &cobra.Command{
		Use:   "list [subtype]",
		Short: "list installed plugins in display order",
		Long: "   Lists both subtypes unless one of assignsubmission or\n" +
			"   assignfeedback is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subtypes := plugin.Subtypes()
			if len(args) == 1 {
				subtypes = []string{args[0]}
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				for _, subtype := range subtypes {
					plugins, err := c.Services.PluginAdmin.List(ctx, operator, subtype)
					if err != nil {
						return err
					}
					printPlugins(cmd.OutOrStdout(), subtype, plugins)
				}
				return nil
			})
		},
	}
	cmdPlugins.AddCommand(cmdList)

	cmdMove := &cobra.Command{
		Use:   "move <subtype> <plugin> <up|down>",
		Short: "move a plugin one place up or down",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := ""
			switch args[2] {
			case "up":
				action = plugin.ActionMoveUp
			case "down":
				action = plugin.ActionMoveDown
			default:
				return fmt.Errorf("direction must be up or down, not %q", args[2])
			}
			return runPluginAction(cmd, args[0], args[1], action)
		},
	}
	cmdPlugins.AddCommand(cmdMove)

	for _, action := range []string{plugin.ActionHide, plugin.ActionShow} {
		action := action
		cmdPlugins.AddCommand(&cobra.Command{
			Use:   action + " <subtype> <plugin>",
			Short: action + " a plugin for every assignment",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPluginAction(cmd, args[0], args[1], action)
			},
		})
	}

	cmdInstall := &cobra.Command{
		Use:   "install",
		Short: "register built-in plugins that are not installed yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				installed, err := c.Services.PluginAdmin.Install(ctx)
				if err != nil {
					return err
				}
				if len(installed) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "all plugins are installed")
					return nil
				}
				for _, p := range installed {
					fmt.Fprintf(cmd.OutOrStdout(), "installed %s_%s\n", p.Subtype, p.Plugin)
				}
				return nil
			})
		},
	}
	cmdPlugins.AddCommand(cmdInstall)

	return cmdPlugins
}

func runPluginAction(cmd *cobra.Command, subtype, name, action string) error {
	return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
		plugins, err := c.Services.PluginAdmin.Execute(ctx, operator, subtype, dto.PluginActionRequest{
			Action: action,
			Plugin: name,
		})
		if err != nil {
			return err
		}
		printPlugins(cmd.OutOrStdout(), subtype, plugins)
		return nil
	})
}

func printPlugins(out io.Writer, subtype string, plugins []dto.PluginResponse) {
	fmt.Fprintln(out, subtype)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPLUGIN\tNAME\tENABLED")
	for _, p := range plugins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", p.SortOrder, p.Plugin, p.Name, p.Enabled)
	}
	_ = w.Flush()
}
