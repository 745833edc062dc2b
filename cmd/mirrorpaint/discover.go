package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mirrorpaint/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find mirrorpaint previews on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		peers, err := discovery.Browse(timeout)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(peers) == 0 {
			fmt.Fprintln(out, "no instances found")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "INSTANCE\tHOST\tURL")
		for _, p := range peers {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Instance, p.Host, p.URL())
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().Duration("timeout", discovery.DefaultBrowseTimeout, "How long to listen for answers")
}
