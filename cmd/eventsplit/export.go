package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/export"
)

func exportCommand() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <event>",
		Short: "Write the settlement as CSV, XLSX or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, cfg, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := core.Settle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			exporter := export.New(export.WithPDFFont(cfg.PDFFont))
			data, filename, _, err := exporter.Export(format, st)
			if err != nil {
				return err
			}

			switch {
			case output == "-":
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case output == "":
				output = filename
			default:
				if info, err := os.Stat(output); err == nil && info.IsDir() {
					output = filepath.Join(output, filename)
				}
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("wrote "+output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "csv, xlsx or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory, - for stdout (default: download name)")
	return cmd
}
