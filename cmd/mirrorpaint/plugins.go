package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mirrorpaint/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect export hooks",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plugins found in the plugin directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		mgr := plugin.NewManager(cfg.Plugins.Dir)
		if err := mgr.Discover(); err != nil {
			return fmt.Errorf("load plugins: %w", err)
		}
		return printPlugins(cmd.OutOrStdout(), mgr.PluginDir(), mgr.List())
	},
}

func printPlugins(w io.Writer, dir string, plugins []*plugin.Plugin) error {
	if len(plugins) == 0 {
		fmt.Fprintf(w, "no plugins in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tEVENTS\tDESCRIPTION")
	for _, p := range plugins {
		m := p.Manifest
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, m.Version, strings.Join(m.Events, ","), m.Description)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
}
