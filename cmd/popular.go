package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most popular snippets",
	Long: `Show the curated popular snippets first, then the rest of the catalog in
document order, up to --limit entries.

Examples:
  snippetkit popular               # Top 6
  snippetkit popular -n 10 -f json`,
	Args: cobra.NoArgs,
	RunE: runPopular,
}

var (
	popularFlags *StandardFlags
	popularLimit int
)

func init() {
	rootCmd.AddCommand(popularCmd)

	popularFlags = AddStandardFlags(popularCmd, "output")
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", catalog.DefaultPopularLimit, "Number of snippets")
}

func runPopular(cmd *cobra.Command, args []string) error {
	if err := popularFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	return outputSnippets(cmd.OutOrStdout(), c.Popular(popularLimit), popularFlags, false)
}
