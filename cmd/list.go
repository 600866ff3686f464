package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List the snippets in the catalog",
	Long: `List the snippets in the catalog in document order.
Shows the id, category and label of each snippet, and optionally the
placeholders it declares.

Examples:
  snippetkit list                         # List all snippets in table format
  snippetkit list -c notifications        # Only the notifications category
  snippetkit list -f json                 # Output as JSON (short flag)
  snippetkit list --format csv            # Output as CSV
  snippetkit list -p -f yaml              # Include placeholders, output as YAML`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listFlags            *StandardFlags
	listWithPlaceholders bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output", "filter")

	listCmd.Flags().
		BoolVarP(&listWithPlaceholders, "with-placeholders", "p", false, "Include declared placeholders")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	snippets := c.All()
	if listFlags.Category != "" {
		id := types.CategoryID(listFlags.Category)
		if _, ok := c.CategoryByID(id); !ok {
			return errors.ErrCategoryNotFound(listFlags.Category)
		}
		snippets = c.ByCategory(id)
	}
	if listFlags.Limit > 0 && len(snippets) > listFlags.Limit {
		snippets = snippets[:listFlags.Limit]
	}

	return outputSnippets(cmd.OutOrStdout(), snippets, listFlags, listWithPlaceholders)
}

// outputSnippets writes snippets in the format selected by flags.
func outputSnippets(w io.Writer, snippets []types.Snippet, flags *StandardFlags, withPlaceholders bool) error {
	switch strings.ToLower(flags.Format) {
	case "json":
		return outputJSON(w, snippetRecords(snippets, withPlaceholders))
	case "yaml":
		return outputYAML(w, snippetRecords(snippets, withPlaceholders))
	case "csv":
		return outputSnippetCSV(w, snippets, withPlaceholders)
	case "table", "":
		if len(snippets) == 0 {
			if !flags.Quiet {
				fmt.Fprintln(w, "No snippets found.")
			}
			return nil
		}
		return outputSnippetTable(w, snippets, withPlaceholders, !flags.Quiet)
	default:
		return fmt.Errorf("unsupported format: %s", flags.Format)
	}
}

// snippetRecord is the listing form of a snippet. Code is left out; use
// show to print it.
type snippetRecord struct {
	ID           string           `json:"id" yaml:"id"`
	Category     types.CategoryID `json:"category" yaml:"category"`
	Label        string           `json:"label" yaml:"label"`
	Description  string           `json:"description" yaml:"description"`
	Placeholders []string         `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
}

func snippetRecords(snippets []types.Snippet, withPlaceholders bool) []snippetRecord {
	records := make([]snippetRecord, len(snippets))
	for i, s := range snippets {
		records[i] = snippetRecord{
			ID:          s.ID,
			Category:    s.Category,
			Label:       s.Label,
			Description: s.Description,
		}
		if withPlaceholders {
			records[i].Placeholders = s.Placeholders
		}
	}
	return records
}

func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func outputSnippetTable(w io.Writer, snippets []types.Snippet, withPlaceholders, summary bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "ID\tCATEGORY\tLABEL"
	separator := "--\t--------\t-----"
	if withPlaceholders {
		header += "\tPLACEHOLDERS"
		separator += "\t------------"
	}
	fmt.Fprintln(tw, header)
	fmt.Fprintln(tw, separator)

	for _, s := range snippets {
		row := fmt.Sprintf("%s\t%s\t%s", s.ID, s.Category, s.Label)
		if withPlaceholders {
			row += "\t" + strings.Join(s.Placeholders, ", ")
		}
		fmt.Fprintln(tw, row)
	}

	if summary {
		fmt.Fprintf(tw, "\nTotal: %d snippets\n", len(snippets))
	}
	return tw.Flush()
}

func outputSnippetCSV(w io.Writer, snippets []types.Snippet, withPlaceholders bool) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "category", "label", "description"}
	if withPlaceholders {
		header = append(header, "placeholders")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range snippets {
		row := []string{s.ID, string(s.Category), s.Label, s.Description}
		if withPlaceholders {
			row = append(row, strings.Join(s.Placeholders, ";"))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
