package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/validation"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog document",
	Long: `Write the loaded catalog as a JSON or YAML document. The output is the
catalog as snippetkit sees it, so exporting the embedded library gives a
starting point for your own catalog.

Examples:
  snippetkit export                           # JSON to stdout
  snippetkit export -f yaml -o snippets.yml   # YAML file
  snippetkit --catalog old.json export -f yaml -o new.yml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format (json, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	AddFlagValidation(exportCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"json", "yaml", "yml"})
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	format, err := catalog.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return catalog.Encode(cmd.OutOrStdout(), c.Document(), format)
	}

	if err := validation.ValidatePath(exportOutput); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if format == catalog.FormatAuto {
		format = catalog.DetectFormat(exportOutput)
	}
	if err := catalog.WriteFile(exportOutput, c.Document(), format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d snippets to %s\n", c.Len(), exportOutput)
	return nil
}
