package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormatWithSuggestion(t *testing.T) {
	valid := []string{"table", "json", "yaml", "csv"}

	testCases := []struct {
		format     string
		expectErr  bool
		suggestion string
	}{
		{format: "json"},
		{format: "JSON"},
		{format: "jsn", expectErr: true, suggestion: `did you mean "json"`},
		{format: "tab", expectErr: true, suggestion: `did you mean "table"`},
		{format: "yml", expectErr: true, suggestion: `did you mean "yaml"`},
		{format: "markdown", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			err := ValidateFormatWithSuggestion(tc.format, valid)
			if !tc.expectErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "valid: table, json, yaml, csv")
			if tc.suggestion != "" {
				assert.Contains(t, err.Error(), tc.suggestion)
			} else {
				assert.NotContains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("json", "json"))
	assert.Equal(t, 1, levenshtein("jsn", "json"))
	assert.Equal(t, 3, levenshtein("", "csv"))
	assert.Equal(t, 2, levenshtein("yaml", "yml2"))
}

func TestValidatePort(t *testing.T) {
	for _, port := range []string{"0", "80", "8088", "65535"} {
		assert.NoError(t, ValidatePort(port), port)
	}
	for _, port := range []string{"-1", "65536", "http", ""} {
		assert.Error(t, ValidatePort(port), port)
	}
}

func TestParseKeyValues(t *testing.T) {
	values, err := ParseKeyValues([]string{"NAME=Ada", "EMPTY=", "QUERY=a=b", " TRIMMED =x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"NAME":    "Ada",
		"EMPTY":   "",
		"QUERY":   "a=b",
		"TRIMMED": "x",
	}, values)

	values, err = ParseKeyValues(nil)
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = ParseKeyValues([]string{"NAME"})
	assert.Error(t, err)

	_, err = ParseKeyValues([]string{"BAD-NAME=x"})
	assert.Error(t, err)
}

func TestReadValuesFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	values, err := ReadValuesFile(write("values.yml", "NAME: Ada\nLIMIT: 10\nENABLED: true\nBLANK:\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"NAME":    "Ada",
		"LIMIT":   "10",
		"ENABLED": "true",
		"BLANK":   "",
	}, values)

	values, err = ReadValuesFile(write("values.json", `{"TABLE_ID": "ta_users"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TABLE_ID": "ta_users"}, values)

	values, err = ReadValuesFile(write("empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = ReadValuesFile(write("nested.yml", "NAME:\n  first: Ada\n"))
	assert.Error(t, err)

	_, err = ReadValuesFile(write("badkey.yml", "bad key: x\n"))
	assert.Error(t, err)

	_, err = ReadValuesFile(filepath.Join(dir, "absent.yml"))
	assert.Error(t, err)
}

func TestAddFlagValidation(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("mode", "fast", "")
	cmd.PersistentFlags().String("level", "", "")

	AddFlagValidation(cmd, "mode", func(v string) error {
		return ValidateFormatWithSuggestion(v, []string{"fast", "slow"})
	})
	AddFlagValidation(cmd, "level", ValidatePort)
	AddFlagValidation(cmd, "missing", ValidatePort)

	assert.NoError(t, cmd.Flags().Set("mode", "slow"))
	assert.Error(t, cmd.Flags().Set("mode", "medium"))
	assert.Equal(t, "slow", cmd.Flags().Lookup("mode").Value.String())

	assert.NoError(t, cmd.PersistentFlags().Set("level", "10"))
	assert.Error(t, cmd.PersistentFlags().Set("level", "high"))
}

func TestStandardFlags_ValidateFlags(t *testing.T) {
	assert.NoError(t, (&StandardFlags{Format: "table"}).ValidateFlags())
	assert.NoError(t, (&StandardFlags{}).ValidateFlags())
	assert.Error(t, (&StandardFlags{Format: "xml"}).ValidateFlags())
	assert.Error(t, (&StandardFlags{Format: "json", Limit: -1}).ValidateFlags())
}
