package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search <term>",
	Aliases: []string{"find"},
	Short:   "Search snippets by label, description or id",
	Long: `Search the catalog. A snippet matches when the term occurs in its label,
description or id, ignoring case. Several arguments are joined with spaces.

Examples:
  snippetkit search toast           # Snippets mentioning "toast"
  snippetkit find "save row" -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(searchCmd)

	searchFlags = AddStandardFlags(searchCmd, "output")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := searchFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	return outputSnippets(cmd.OutOrStdout(), c.Search(strings.Join(args, " ")), searchFlags, false)
}
