package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/libreo-books/libreo/internal/pipeline"
	"github.com/spf13/cobra"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Run OCR and metadata extraction on a local image",
		Long: `Runs a single image through the same pipeline the server uses and
prints the result as JSON. The image is copied into the upload directory
and a successful record is appended to the records file.`,
		Example: `  libreo extract cover.jpg
  libreo extract --config libreo.yaml title_page.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			result, err := c.pipeline.Process(cmd.Context(), pipeline.Upload{
				Data:     data,
				Filename: filepath.Base(args[0]),
			})
			if err != nil {
				return err
			}

			output := map[string]any{
				"stage":     result.Stage,
				"image":     result.ImagePath,
				"text":      result.Text,
				"persisted": result.Persisted,
			}
			if result.Record != nil {
				output["data"] = result.Record
			}
			if result.ExtractionErr != nil {
				output["error"] = result.ExtractionErr.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(output)
		},
	}

	return cmd
}
