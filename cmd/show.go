package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/placeholder"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"s"},
	Short:   "Print a snippet with its placeholders filled in",
	Long: `Print a snippet's code with placeholder values substituted.

Values come from --set flags and --values files, then from --defaults files.
Placeholders without a value are printed as {{TOKEN}}. With --strict, a
declared placeholder without a value is an error.

Examples:
  snippetkit show notify-success                            # Print the template
  snippetkit show notify-success --set MESSAGE=Saved        # Fill in one value
  snippetkit show create-row --values values.yml --strict   # Every value required
  snippetkit show create-row --empty-values > values.json   # Start a values file
  snippetkit show create-row --raw | pbcopy                 # Code only`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	showSet         []string
	showValuesFile  string
	showDefaults    string
	showStrict      bool
	showEmptyValues bool
	showRaw         bool
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringArrayVar(&showSet, "set", nil, "Placeholder value as KEY=VALUE (repeatable)")
	showCmd.Flags().StringVar(&showValuesFile, "values", "", "YAML or JSON file of placeholder values")
	showCmd.Flags().StringVar(&showDefaults, "defaults", "", "YAML or JSON file of fallback values")
	showCmd.Flags().BoolVar(&showStrict, "strict", false, "Fail when a declared placeholder has no value")
	showCmd.Flags().BoolVar(&showEmptyValues, "empty-values", false, "Print an empty values map as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print only the code")

	AddFlagValidation(showCmd, "values", ValidateFileExists)
	AddFlagValidation(showCmd, "defaults", ValidateFileExists)
}

func runShow(cmd *cobra.Command, args []string) error {
	_, c, err := loadCatalog()
	if err != nil {
		return err
	}

	snippet, ok := c.ByID(args[0])
	if !ok {
		return errors.ErrSnippetNotFound(args[0])
	}

	out := cmd.OutOrStdout()
	if showEmptyValues {
		return outputJSON(out, placeholder.CreateEmptyValues(snippet.Code))
	}

	values, defaults, err := showValues()
	if err != nil {
		return err
	}

	provided := make(map[string]string, len(values)+len(defaults))
	for name, value := range defaults {
		provided[name] = value
	}
	for name, value := range values {
		provided[name] = value
	}

	result := placeholder.Validate(snippet.Placeholders, provided)
	if !result.Valid {
		if showStrict {
			return errors.ErrMissingValues(snippet.ID, result.Missing)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no value for %s\n", strings.Join(result.Missing, ", "))
	}

	code := placeholder.ReplaceWithDefaults(snippet.Code, values, defaults)
	if showRaw {
		fmt.Fprintln(out, code)
		return nil
	}

	fmt.Fprintf(out, "%s (%s)\n", snippet.Label, snippet.ID)
	if snippet.Description != "" {
		fmt.Fprintln(out, snippet.Description)
	}
	if len(snippet.Placeholders) > 0 {
		fmt.Fprintf(out, "Placeholders: %s\n", strings.Join(snippet.Placeholders, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, code)
	if snippet.Example != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Example:")
		fmt.Fprintln(out, snippet.Example)
	}
	return nil
}

// showValues collects the explicit values (files first, then --set) and the
// fallback defaults.
func showValues() (map[string]string, map[string]string, error) {
	values := make(map[string]string)
	if showValuesFile != "" {
		fromFile, err := ReadValuesFile(showValuesFile)
		if err != nil {
			return nil, nil, err
		}
		for name, value := range fromFile {
			values[name] = value
		}
	}

	set, err := ParseKeyValues(showSet)
	if err != nil {
		return nil, nil, err
	}
	for name, value := range set {
		values[name] = value
	}

	defaults := map[string]string{}
	if showDefaults != "" {
		defaults, err = ReadValuesFile(showDefaults)
		if err != nil {
			return nil, nil, err
		}
	}
	return values, defaults, nil
}
