package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/types"
)

func validSnippet() types.Snippet {
	return types.Snippet{
		ID:           "notify-success",
		Category:     types.CategoryNotifications,
		Label:        "Notification Success",
		Description:  "Show a success toast to the user",
		Code:         `budibase.notify.success("{{MESSAGE}}")`,
		Placeholders: []string{"MESSAGE"},
		Example:      `budibase.notify.success("Row saved")`,
	}
}

func rules(issues []Issue) []Rule {
	out := make([]Rule, len(issues))
	for i, issue := range issues {
		out[i] = issue.Rule
	}
	return out
}

func TestValidateSnippet_Valid(t *testing.T) {
	result := ValidateSnippet(validSnippet())

	assert.True(t, result.Valid())
	assert.Equal(t, "notify-success", result.ID)
	assert.NotNil(t, result.Errors)
	assert.NotNil(t, result.Warnings)
}

func TestValidateSnippet(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*types.Snippet)
		errors   []Rule
		warnings []Rule
	}{
		{
			name:   "missing id",
			mutate: func(s *types.Snippet) { s.ID = "" },
			errors: []Rule{RuleRequiredField},
		},
		{
			name: "all required fields missing",
			mutate: func(s *types.Snippet) {
				*s = types.Snippet{}
			},
			errors: []Rule{
				RuleRequiredField, RuleRequiredField, RuleRequiredField,
				RuleRequiredField, RuleRequiredField, RuleRequiredField,
			},
			warnings: []Rule{RuleExample},
		},
		{
			name:   "nil placeholders are missing",
			mutate: func(s *types.Snippet) { s.Placeholders = nil; s.Code = "window.location.reload()" },
			errors: []Rule{RuleRequiredField},
		},
		{
			name:   "empty placeholders are present",
			mutate: func(s *types.Snippet) { s.Placeholders = []string{}; s.Code = "window.location.reload()" },
		},
		{
			name:   "uppercase id",
			mutate: func(s *types.Snippet) { s.ID = "Notify-Success" },
			errors: []Rule{RuleIDFormat},
		},
		{
			name:   "underscore id",
			mutate: func(s *types.Snippet) { s.ID = "notify_success" },
			errors: []Rule{RuleIDFormat},
		},
		{
			name:     "short id",
			mutate:   func(s *types.Snippet) { s.ID = "ab" },
			warnings: []Rule{RuleIDLength},
		},
		{
			name:     "long id",
			mutate:   func(s *types.Snippet) { s.ID = strings.Repeat("a", 51) },
			warnings: []Rule{RuleIDLength},
		},
		{
			name:   "id of exactly fifty",
			mutate: func(s *types.Snippet) { s.ID = strings.Repeat("a", 50) },
		},
		{
			name:   "unknown category",
			mutate: func(s *types.Snippet) { s.Category = "charts" },
			errors: []Rule{RuleCategory},
		},
		{
			name:     "short label",
			mutate:   func(s *types.Snippet) { s.Label = "Ok" },
			warnings: []Rule{RuleLabelLength},
		},
		{
			name:     "short description",
			mutate:   func(s *types.Snippet) { s.Description = "Toast" },
			warnings: []Rule{RuleDescriptionLength},
		},
		{
			name:     "description counted in runes",
			mutate:   func(s *types.Snippet) { s.Description = "éééééé" },
			warnings: []Rule{RuleDescriptionLength},
		},
		{
			name:     "short code",
			mutate:   func(s *types.Snippet) { s.Code = "x{{A}}"; s.Placeholders = []string{"A"} },
			warnings: []Rule{RuleCodeLength},
		},
		{
			name:   "declared placeholder absent from code",
			mutate: func(s *types.Snippet) { s.Placeholders = []string{"MESSAGE", "TITLE"} },
			errors: []Rule{RuleDeclaredPlaceholder},
		},
		{
			name: "undeclared placeholder warns per occurrence",
			mutate: func(s *types.Snippet) {
				s.Code = `notify("{{MESSAGE}}", "{{TYPE}}", "{{TYPE}}")`
			},
			warnings: []Rule{RuleUndeclared, RuleUndeclared},
		},
		{
			name:     "missing example",
			mutate:   func(s *types.Snippet) { s.Example = "" },
			warnings: []Rule{RuleExample},
		},
		{
			name:     "short example",
			mutate:   func(s *types.Snippet) { s.Example = "notify()" },
			warnings: []Rule{RuleExample},
		},
		{
			name: "malformed tokens are ignored",
			mutate: func(s *types.Snippet) {
				s.Code = `budibase.notify.success("{{MESSAGE}} {{ NAME }} {{}}")`
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnippet()
			tt.mutate(&s)

			result := ValidateSnippet(s)
			if tt.errors == nil {
				tt.errors = []Rule{}
			}
			if tt.warnings == nil {
				tt.warnings = []Rule{}
			}
			assert.Equal(t, tt.errors, rules(result.Errors), "errors: %v", result.Errors)
			assert.Equal(t, tt.warnings, rules(result.Warnings), "warnings: %v", result.Warnings)
		})
	}
}

func TestValidateSnippet_Messages(t *testing.T) {
	s := validSnippet()
	s.Placeholders = []string{"TITLE"}

	result := ValidateSnippet(s)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `placeholder "TITLE" not found in code`, result.Errors[0].String())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, `placeholder "MESSAGE" used but not declared`, result.Warnings[0].Message)
}

func TestValidateDocument(t *testing.T) {
	broken := validSnippet()
	broken.ID = "Bad ID"

	warned := validSnippet()
	warned.ID = "notify-warning"
	warned.Example = ""

	anonymous := validSnippet()
	anonymous.ID = ""

	doc := &types.Document{
		Version: "1.0.0",
		Snippets: []types.Snippet{
			validSnippet(),
			broken,
			warned,
			validSnippet(),
			anonymous,
			validSnippet(),
		},
	}

	report := ValidateDocument(doc)

	assert.Equal(t, 6, report.TotalSnippets)
	assert.Equal(t, 3, report.ValidSnippets)
	assert.Equal(t, 2, report.SnippetsWithErrors)
	assert.Equal(t, 1, report.SnippetsWithWarnings)
	assert.Equal(t, []string{"notify-success", "notify-success"}, report.DuplicateIDs)
	// two duplicates + invalid id + missing id
	assert.Equal(t, 4, report.TotalErrors)
	assert.Equal(t, 1, report.TotalWarnings)
	assert.Equal(t, []Rule{RuleDuplicateID}, rules(report.Document))

	require.Len(t, report.Details, 6)
	assert.Equal(t, "Bad ID", report.Details[1].ID)
	assert.Equal(t, "#4", report.Details[4].ID)
	assert.False(t, report.Passed(false))
}

func TestValidateDocument_MissingVersion(t *testing.T) {
	report := ValidateDocument(&types.Document{Snippets: []types.Snippet{validSnippet()}})

	assert.Equal(t, 1, report.TotalErrors)
	assert.Equal(t, []Rule{RuleVersion}, rules(report.Document))
	assert.Equal(t, 1, report.ValidSnippets)
	assert.False(t, report.Passed(false))
}

func TestReport_Passed(t *testing.T) {
	withWarning := validSnippet()
	withWarning.Example = ""

	report := ValidateDocument(&types.Document{Version: "1", Snippets: []types.Snippet{withWarning}})
	assert.True(t, report.Passed(false))
	assert.False(t, report.Passed(true))

	empty := ValidateDocument(&types.Document{Version: "1", Snippets: []types.Snippet{}})
	assert.True(t, empty.Passed(true))
	assert.Equal(t, 0, empty.TotalSnippets)

	assert.False(t, ValidateDocument(nil).Passed(false))
}

func TestDefaultLibraryIsClean(t *testing.T) {
	doc, err := catalog.LoadDefault()
	require.NoError(t, err)

	report := ValidateDocument(doc)
	for _, detail := range report.Details {
		assert.Empty(t, detail.Errors, detail.ID)
		assert.Empty(t, detail.Warnings, detail.ID)
	}
	assert.True(t, report.Passed(true))
}

func TestGenerateStats(t *testing.T) {
	noPlaceholders := validSnippet()
	noPlaceholders.ID = "reload-page"
	noPlaceholders.Category = types.CategoryUtilities
	noPlaceholders.Code = "location.reload()"
	noPlaceholders.Placeholders = []string{}

	uncategorized := validSnippet()
	uncategorized.Category = ""
	uncategorized.Code = "éé"
	uncategorized.Placeholders = nil

	stats := GenerateStats(&types.Document{
		Snippets: []types.Snippet{validSnippet(), noPlaceholders, uncategorized},
	})

	assert.Equal(t, map[types.CategoryID]int{
		types.CategoryNotifications: 1,
		types.CategoryUtilities:     1,
	}, stats.ByCategory)
	assert.Equal(t, 1, stats.WithPlaceholders)
	assert.Equal(t, 2, stats.WithoutPlaceholders)

	codeLength := len(validSnippet().Code) + len("location.reload()") + 2
	assert.Equal(t, codeLength, stats.TotalCodeLength)
	assert.Equal(t, (codeLength+1)/3, stats.AvgCodeLength)
}

func TestGenerateStats_Empty(t *testing.T) {
	stats := GenerateStats(&types.Document{Snippets: []types.Snippet{}})
	assert.Equal(t, 0, stats.AvgCodeLength)
	assert.Empty(t, stats.ByCategory)

	assert.NotNil(t, GenerateStats(nil).ByCategory)
}

func TestExportReport(t *testing.T) {
	doc := &types.Document{Version: "1.2.0", Snippets: []types.Snippet{validSnippet()}}
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))

	export := NewExport(ValidateDocument(doc), GenerateStats(doc), doc.Version, false, now)
	path := filepath.Join(t.TempDir(), "validation-report.json")
	require.NoError(t, export.WriteReport(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2026-03-04T10:06:07Z", decoded["timestamp"])
	assert.Equal(t, "1.2.0", decoded["library_version"])
	assert.Equal(t, true, decoded["passed"])

	validation := decoded["validation"].(map[string]interface{})
	assert.EqualValues(t, 1, validation["total_snippets"])
	statistics := decoded["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, statistics["with_placeholders"])

	err = export.WriteReport(filepath.Join(t.TempDir(), "missing", "report.json"))
	assert.Error(t, err)
}

func TestExportReport_Strict(t *testing.T) {
	snippet := validSnippet()
	snippet.Example = ""
	doc := &types.Document{Version: "1.2.0", Snippets: []types.Snippet{snippet}}
	report := ValidateDocument(doc)
	require.Equal(t, 1, report.TotalWarnings)

	lenient := NewExport(report, GenerateStats(doc), doc.Version, false, time.Now())
	assert.True(t, lenient.Passed)

	strict := NewExport(report, GenerateStats(doc), doc.Version, true, time.Now())
	assert.False(t, strict.Passed)
}
