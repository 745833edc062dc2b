package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mirrorpaint/internal/store"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Manage saved drawings",
}

var exportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drawings, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		exports, err := st.Exports().List(limit)
		if err != nil {
			return fmt.Errorf("list exports: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(exports)
		}
		return printExports(cmd.OutOrStdout(), exports)
	},
}

var exportsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a drawing from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		exp, err := st.Exports().GetByID(args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no export with id %s", args[0])
			}
			return err
		}
		if err := st.Exports().Delete(exp.ID); err != nil {
			return fmt.Errorf("delete export: %w", err)
		}

		if files, _ := cmd.Flags().GetBool("files"); files {
			for _, path := range []string{exp.PNGPath, exp.PDFPath} {
				if path == "" {
					continue
				}
				if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("remove %s: %w", path, err)
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", exp.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportsCmd)
	exportsCmd.AddCommand(exportsListCmd, exportsRmCmd)

	exportsListCmd.Flags().Int("limit", 0, "Show at most this many (0 for all)")
	exportsListCmd.Flags().Bool("json", false, "Print as JSON")
	exportsRmCmd.Flags().Bool("files", false, "Also delete the PNG and PDF files")
}

func printExports(w io.Writer, exports []*store.Export) error {
	if len(exports) == 0 {
		_, err := fmt.Fprintln(w, "no saved drawings")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tSOURCE\tPATH")
	for _, e := range exports {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n", e.ID, e.Name, e.Width, e.Height, e.Source, e.PNGPath)
	}
	return tw.Flush()
}
