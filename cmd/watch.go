package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/config"
	"github.com/memora-solutions/snippetkit/internal/logging"
	"github.com/memora-solutions/snippetkit/internal/validation"
	"github.com/memora-solutions/snippetkit/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Lint the catalog whenever it changes",
	Long: `Watch a catalog file and run the linter each time it is saved. Bursts of
writes are coalesced using the debounce delay.

Examples:
  snippetkit watch snippets.yml              # Watch a specific file
  snippetkit --catalog snippets.json watch   # Watch the configured catalog
  snippetkit watch --debounce 1s --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("debounce", 0, "Delay before linting after a change (default 300ms)")
	watchCmd.Flags().Bool("strict", false, "Treat warnings as failures")
	watchCmd.Flags().Bool("no-report", false, "Do not write a report file")

	bindFlag(watchCmd, "debounce", "watch.debounce")
	bindFlag(watchCmd, "strict", "validation.strict")
	bindFlag(watchCmd, "no-report", "validation.no_report")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("watch needs a catalog file: pass one or set --catalog")
	}
	if err := validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	format, err := catalog.ParseFormat(cfg.Catalog.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Log.Logger().WithComponent("watch")
	out := cmd.OutOrStdout()

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoTempFilter)
	if err := fileWatcher.AddFile(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			fmt.Fprintf(out, "📁 %s: %s\n", event.Type, event.Path)
		}
		lintFile(ctx, out, logger, cfg, path, format)
		return nil
	})

	lintFile(ctx, out, logger, cfg, path, format)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	fmt.Fprintf(out, "👀 Watching %s (press Ctrl+C to stop)\n", path)

	<-ctx.Done()
	fmt.Fprintln(out, "Stopped watching.")
	return nil
}

// lintFile loads and lints path, printing the outcome. Failures are reported
// rather than returned so that watching continues.
func lintFile(ctx context.Context, w io.Writer, logger logging.Logger, cfg *config.Config, path string, format catalog.Format) bool {
	fmt.Fprintf(w, "\n[%s] Linting %s\n", time.Now().Format("15:04:05"), path)

	doc, err := catalog.LoadFormat(path, format)
	if err != nil {
		logger.Warn(ctx, err, "Failed to load catalog", "path", path)
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintln(w, err)
		return false
	}

	export, err := lintDocument(ctx, logger, cfg, doc)
	if err != nil {
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintln(w, err)
	}
	printReport(w, export.Validation, cfg.Validation.Strict)
	return err == nil && export.Validation.Passed(cfg.Validation.Strict)
}
