package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/memora-solutions/snippetkit/internal/config"
	"github.com/memora-solutions/snippetkit/internal/placeholder"
)

// OutputFormats are the formats accepted by --format on listing commands.
var OutputFormats = []string{"table", "json", "yaml", "csv"}

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Output flags
	Format string `flag:"format,f" desc:"Output format (table|json|yaml|csv)" default:"table"`
	Quiet  bool   `flag:"quiet,q" desc:"Suppress informational output" default:"false"`

	// Filter flags
	Category string `flag:"category,c" desc:"Only snippets in this category" default:""`
	Limit    int    `flag:"limit,n" desc:"Maximum number of snippets" default:"0"`

	// Server flags
	Port int    `flag:"port,p" desc:"Port to serve on" default:"8088"`
	Host string `flag:"host" desc:"Host to bind to" default:"localhost"`
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "output":
			addOutputFlags(cmd, flags)
		case "filter":
			addFilterFlags(cmd, flags)
		case "server":
			addServerFlags(cmd, flags)
		}
	}

	return flags
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml|csv)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress informational output")

	AddFlagValidation(cmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, OutputFormats)
	})
}

func addFilterFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Category, "category", "c", "", "Only snippets in this category")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", 0, "Maximum number of snippets (0 for all)")
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", config.DefaultPort, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", config.DefaultHost, "Host to bind to")

	AddFlagValidation(cmd, "port", ValidatePort)
	bindFlag(cmd, "port", "server.port")
	bindFlag(cmd, "host", "server.host")
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Format != "" {
		if err := ValidateFormatWithSuggestion(f.Format, OutputFormats); err != nil {
			return err
		}
	}

	if f.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.Limit)
	}

	return nil
}

// AddFlagValidation adds validation for a specific flag. Local flags are
// searched first, then persistent ones.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(flagName)
	}
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port flag value.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	// 0 asks the system for a free port.
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateFileExists checks that an optional file flag names an existing file.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateFormatWithSuggestion accepts format (case-insensitively) when it
// is one of valid, and otherwise suggests the closest match.
func ValidateFormatWithSuggestion(format string, valid []string) error {
	lower := strings.ToLower(format)
	for _, v := range valid {
		if lower == v {
			return nil
		}
	}

	if suggestion := closestMatch(lower, valid); suggestion != "" {
		return fmt.Errorf("invalid format %q, did you mean %q? (valid: %s)",
			format, suggestion, strings.Join(valid, ", "))
	}
	return fmt.Errorf("invalid format %q (valid: %s)", format, strings.Join(valid, ", "))
}

// closestMatch returns the candidate within edit distance 2 of input, or
// one that input is a prefix of.
func closestMatch(input string, candidates []string) string {
	best := ""
	bestDistance := 3
	for _, candidate := range candidates {
		if input != "" && strings.HasPrefix(candidate, input) {
			return candidate
		}
		if d := levenshtein(input, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// ParseKeyValues parses repeated KEY=VALUE flags into placeholder values.
// Keys must be valid placeholder names; values may be empty and may contain
// '='.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid value %q: expected KEY=VALUE", pair)
		}
		key = strings.TrimSpace(key)
		if !placeholder.IsValidName(key) {
			return nil, fmt.Errorf("invalid placeholder name %q: use letters, digits and underscores", key)
		}
		values[key] = value
	}
	return values, nil
}

// ReadValuesFile reads a flat placeholder value map from a YAML or JSON file.
// Scalars of any type are taken as their text; null is the empty string.
func ReadValuesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid values file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		if !placeholder.IsValidName(key) {
			return nil, fmt.Errorf("invalid values file %s: bad placeholder name %q", path, key)
		}
		switch v := value.(type) {
		case nil:
			values[key] = ""
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("invalid values file %s: value of %s is not a scalar", path, key)
		default:
			values[key] = fmt.Sprint(v)
		}
	}
	return values, nil
}
