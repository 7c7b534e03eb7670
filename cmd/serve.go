package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/libreo-books/libreo/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the image upload server",
		Long: `Starts the Libreo HTTP server.

POST an image as the multipart field "image" to /upload-image (or a JSON
body {"image_url": "..."}) to get back the OCR text and the extracted
book record. Stored records are listed at /records.`,
		Example: `  # Start server on the configured port (default 5000)
  libreo serve

  # Start server on custom port
  libreo serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTP.Port = port
			}

			c, err := newComponents(cfg)
			if err != nil {
				return err
			}
			handler := handlers.New(c.pipeline, c.records, c.fetcher, cfg.HTTP.MaxUploadBytes)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/upload-image", handler.HandleUpload)
			mux.HandleFunc("/records", handler.HandleRecords)
			mux.HandleFunc("/healthcheck", handler.HandleHealthcheck)

			addr := ":" + cfg.HTTP.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Libreo server listening", "addr", addr, "url", "http://localhost"+addr,
					"extraction", c.pipeline.ExtractionEnabled())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give in-flight uploads time to finish their model call
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Extraction.Timeout+5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config and PORT)")

	return cmd
}
