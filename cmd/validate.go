package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/config"
	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/logging"
	"github.com/memora-solutions/snippetkit/internal/types"
	"github.com/memora-solutions/snippetkit/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:     "validate [file]",
	Aliases: []string{"lint"},
	Short:   "Lint a snippet catalog",
	Long: `Lint a catalog document for problems including:

- Missing required fields
- Malformed or duplicate snippet ids
- Unknown categories
- Declared placeholders that the code never uses
- Placeholders used in the code but not declared
- Very short labels, descriptions, code and examples

Errors fail the run. With --strict, warnings fail it too. Unless --no-report
is set, a JSON report is written to the report path.

Examples:
  snippetkit validate                       # Lint the configured catalog
  snippetkit validate snippets.yml          # Lint a specific file
  snippetkit lint --strict --no-report      # Fail on warnings, no report file
  snippetkit validate --format json         # Print the report as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateCommand,
}

var validateFormat string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict", false, "Treat warnings as failures")
	validateCmd.Flags().String("report", "", "Path of the JSON report (default validation-report.json)")
	validateCmd.Flags().Bool("no-report", false, "Do not write a report file")
	validateCmd.Flags().
		StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")

	AddFlagValidation(validateCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"text", "json"})
	})

	bindFlag(validateCmd, "strict", "validation.strict")
	bindFlag(validateCmd, "report", "validation.report_path")
	bindFlag(validateCmd, "no-report", "validation.no_report")
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := lintTarget(cfg, args)
	if err != nil {
		return err
	}

	logger := cfg.Log.Logger().WithComponent("validate")
	export, err := lintDocument(cmd.Context(), logger, cfg, doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if strings.ToLower(validateFormat) == "json" {
		if err := outputJSON(out, export); err != nil {
			return err
		}
	} else {
		printReport(out, export.Validation, cfg.Validation.Strict)
		if !cfg.Validation.NoReport {
			fmt.Fprintf(out, "Report written to %s\n", cfg.Validation.ReportPath)
		}
	}

	if !export.Validation.Passed(cfg.Validation.Strict) {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, failureMessage(export.Validation, cfg.Validation.Strict))
	}
	return nil
}

// lintTarget loads the document named on the command line, or the
// configured catalog. The document is linted as stored, before any
// normalization by the catalog.
func lintTarget(cfg *config.Config, args []string) (*types.Document, error) {
	if len(args) == 1 {
		if err := validation.ValidatePath(args[0]); err != nil {
			return nil, fmt.Errorf("invalid catalog path: %w", err)
		}
		format, err := catalog.ParseFormat(cfg.Catalog.Format)
		if err != nil {
			return nil, err
		}
		return catalog.LoadFormat(args[0], format)
	}

	source, err := catalogSource(cfg)
	if err != nil {
		return nil, err
	}
	return source()
}

// lintDocument lints doc and writes the report file unless disabled.
func lintDocument(ctx context.Context, logger logging.Logger, cfg *config.Config, doc *types.Document) (validation.ExportReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	op := logging.StartOperation(logger, "lint")
	report := validation.ValidateDocument(doc)
	export := validation.NewExport(report, validation.GenerateStats(doc), doc.Version, cfg.Validation.Strict, time.Now())
	op.End(ctx, "snippets", report.TotalSnippets, "errors", report.TotalErrors, "warnings", report.TotalWarnings)

	if cfg.Validation.NoReport {
		return export, nil
	}
	if err := export.WriteReport(cfg.Validation.ReportPath); err != nil {
		logger.Error(ctx, err, "Failed to write validation report", "path", cfg.Validation.ReportPath)
		return export, err
	}
	logger.Debug(ctx, "Validation report written", "path", cfg.Validation.ReportPath)
	return export, nil
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	passColor    = color.New(color.FgGreen, color.Bold)
	headingColor = color.New(color.Bold)
)

// printReport writes a human readable lint report. Only snippets with
// findings are listed.
func printReport(w io.Writer, report *validation.Report, strict bool) {
	for _, issue := range report.Document {
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintln(w, issue.Message)
	}

	for _, result := range report.Details {
		if result.Valid() {
			continue
		}
		headingColor.Fprintln(w, result.ID)
		for _, issue := range result.Errors {
			errorColor.Fprint(w, "  ✗ ")
			fmt.Fprintf(w, "%s [%s]\n", issue.Message, issue.Rule)
		}
		for _, issue := range result.Warnings {
			warningColor.Fprint(w, "  ⚠ ")
			fmt.Fprintf(w, "%s [%s]\n", issue.Message, issue.Rule)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Snippets: %d total, %d valid, %d with errors, %d with warnings\n",
		report.TotalSnippets, report.ValidSnippets, report.SnippetsWithErrors, report.SnippetsWithWarnings)

	if report.Passed(strict) {
		passColor.Fprintf(w, "✓ Passed")
		fmt.Fprintf(w, " (%d warnings)\n", report.TotalWarnings)
		return
	}
	errorColor.Fprintf(w, "✗ Failed")
	fmt.Fprintf(w, " (%d errors, %d warnings)\n", report.TotalErrors, report.TotalWarnings)
}

func failureMessage(report *validation.Report, strict bool) string {
	if report.TotalErrors == 0 && strict {
		return fmt.Sprintf("validation failed: %d warnings in strict mode", report.TotalWarnings)
	}
	return fmt.Sprintf("validation failed: %d errors", report.TotalErrors)
}
