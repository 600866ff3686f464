package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/types"
	"github.com/memora-solutions/snippetkit/internal/validation"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long: `Show the catalog version, snippet counts per category and code statistics.

Examples:
  snippetkit stats
  snippetkit stats --format json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var statsFormat string

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "Output format (text, json)")
	AddFlagValidation(statsCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"text", "json"})
	})
}

// StatsReport combines the catalog counts with the linter's statistics.
type StatsReport struct {
	Version    string                   `json:"version"`
	Total      int                      `json:"total"`
	ByCategory map[types.CategoryID]int `json:"by_category"`
	Code       validation.Statistics    `json:"code"`
}

func newStatsReport(c *catalog.Catalog) StatsReport {
	return StatsReport{
		Version:    c.Version(),
		Total:      c.Len(),
		ByCategory: c.Stats(),
		Code:       validation.GenerateStats(c.Document()),
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	report := newStatsReport(c)
	if strings.ToLower(statsFormat) == "json" {
		return outputJSON(cmd.OutOrStdout(), report)
	}
	return outputStatsText(cmd.OutOrStdout(), c, report)
}

func outputStatsText(w io.Writer, c *catalog.Catalog, report StatsReport) error {
	fmt.Fprintf(w, "Catalog version: %s\n", report.Version)
	fmt.Fprintf(w, "Snippets:        %d\n\n", report.Total)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSNIPPETS")
	for _, category := range c.Categories() {
		if n := report.ByCategory[category.ID]; n > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", category.Label, n)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "With placeholders:    %d\n", report.Code.WithPlaceholders)
	fmt.Fprintf(w, "Without placeholders: %d\n", report.Code.WithoutPlaceholders)
	fmt.Fprintf(w, "Total code length:    %d\n", report.Code.TotalCodeLength)
	fmt.Fprintf(w, "Average code length:  %d\n", report.Code.AvgCodeLength)
	return nil
}
