package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse the catalog in a web browser",
	Long: `Start the catalog browser. It serves an HTML catalog page and a JSON API
for listing, searching and rendering snippets. When the catalog is a file,
saving it reloads the catalog and every open page over WebSocket.

Examples:
  snippetkit serve                                  # http://localhost:8088
  snippetkit serve -p 9000 --host 0.0.0.0
  snippetkit --catalog snippets.yml serve           # Live reload on save
  snippetkit serve --origin https://docs.example.com`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	AddStandardFlags(serveCmd, "server")
	serveCmd.Flags().StringSlice("origin", nil, "Origin allowed to open a WebSocket (repeatable)")

	bindFlag(serveCmd, "origin", "server.allowed_origins")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := cfg.Log.Logger()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d snippets on http://%s\n", store.Current().Len(), cfg.Server.Addr())
	if cfg.Catalog.Path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes\n", cfg.Catalog.Path)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
