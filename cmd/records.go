package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/libreo-books/libreo/internal/storage"
	"github.com/spf13/cobra"
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and export the stored book records",
	}

	cmd.AddCommand(newRecordsListCmd(opts))
	cmd.AddCommand(newRecordsExportCmd(opts))

	return cmd
}

func newRecordsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			records, err := storage.NewRecordStore(cfg.Storage.RecordsFile).List()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
}

func newRecordsExportCmd(opts *rootOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored records to JSON, YAML or Parquet",
		Example: `  libreo records export --format parquet --output records.parquet
  libreo records export --format yaml --output records.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			records, err := storage.NewRecordStore(cfg.Storage.RecordsFile).List()
			if err != nil {
				return err
			}

			if err := storage.Export(records, format, output); err != nil {
				return err
			}

			slog.Info("Exported records", "count", len(records), "format", format, "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", fmt.Sprintf("Output format (%s)", strings.Join(storage.ExportFormats, ", ")))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
