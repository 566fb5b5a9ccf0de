package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"startupdash/internal/exporter"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered records to a CSV or XLSX file",
		Long: `Export applies the same founding year and sector filter as the dashboard
and writes the matching records, with every column of the input, to a file.
The format defaults to the extension of --out, then to CSV.

Example:
  startupdash export --year-min 2012 --sector Software --out software.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, logger, err := root.loadDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var f exporter.Format
			switch {
			case format != "":
				if f, err = exporter.ParseFormat(format); err != nil {
					return err
				}
			case filepath.Ext(out) != "":
				if f, err = exporter.ParseFormat(filepath.Ext(out)); err != nil {
					return err
				}
			default:
				f = exporter.FormatCSV
			}
			if out == "" {
				out = f.FileName(cfg.Export.BaseName)
			}

			params := filters.params(cmd, svc.DefaultParams())
			records, err := svc.Filtered(cmd.Context(), params)
			if err != nil {
				return err
			}

			if err := exporter.WriteFile(out, f, svc.Columns(), records, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", records.Len(), out)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default: from --out, else csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <export.base_name>.<format>)")
	return cmd
}
