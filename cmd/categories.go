package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/types"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List categories with their snippet counts",
	Long: `List the snippet categories in display order with the number of snippets
in each. Empty categories are included.

Examples:
  snippetkit categories
  snippetkit cats -f json`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

var categoriesFlags *StandardFlags

func init() {
	rootCmd.AddCommand(categoriesCmd)

	categoriesFlags = AddStandardFlags(categoriesCmd, "output")
}

type categoryRecord struct {
	ID          types.CategoryID `json:"id" yaml:"id"`
	Label       string           `json:"label" yaml:"label"`
	Description string           `json:"description" yaml:"description"`
	Count       int              `json:"count" yaml:"count"`
}

func categoryRecords(c *catalog.Catalog) []categoryRecord {
	counts := c.Stats()
	categories := c.Categories()
	records := make([]categoryRecord, len(categories))
	for i, category := range categories {
		records[i] = categoryRecord{
			ID:          category.ID,
			Label:       category.Label,
			Description: category.Description,
			Count:       counts[category.ID],
		}
	}
	return records
}

func runCategories(cmd *cobra.Command, args []string) error {
	if err := categoriesFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	records := categoryRecords(c)
	out := cmd.OutOrStdout()

	switch strings.ToLower(categoriesFlags.Format) {
	case "json":
		return outputJSON(out, records)
	case "yaml":
		return outputYAML(out, records)
	case "csv":
		return outputCategoryCSV(out, records)
	case "table", "":
		return outputCategoryTable(out, records)
	default:
		return fmt.Errorf("unsupported format: %s", categoriesFlags.Format)
	}
}

func outputCategoryTable(w io.Writer, records []categoryRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSNIPPETS")
	fmt.Fprintln(tw, "--\t-----\t--------")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.ID, r.Label, r.Count)
	}
	return tw.Flush()
}

func outputCategoryCSV(w io.Writer, records []categoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "label", "description", "count"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{string(r.ID), r.Label, r.Description, strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
