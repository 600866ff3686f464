// Package validation checks snippet catalogs for authoring mistakes and
// provides the input checks shared by the config and server packages.
//
// The linter never fails: every problem is reported as an Issue with a
// severity, and callers decide whether warnings matter.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/memora-solutions/snippetkit/internal/placeholder"
	"github.com/memora-solutions/snippetkit/internal/types"
)

// Rule identifies the check that produced an issue.
type Rule string

const (
	RuleRequiredField       Rule = "required-field"
	RuleIDFormat            Rule = "id-format"
	RuleIDLength            Rule = "id-length"
	RuleCategory            Rule = "category"
	RuleLabelLength         Rule = "label-length"
	RuleDescriptionLength   Rule = "description-length"
	RuleCodeLength          Rule = "code-length"
	RuleDeclaredPlaceholder Rule = "declared-placeholder"
	RuleUndeclared          Rule = "undeclared-placeholder"
	RuleExample             Rule = "example"
	RuleVersion             Rule = "version"
	RuleDuplicateID         Rule = "duplicate-id"
)

// Length thresholds, counted in runes.
const (
	MinIDLength          = 3
	MaxIDLength          = 50
	MinLabelLength       = 3
	MinDescriptionLength = 10
	MinCodeLength        = 10
	MinExampleLength     = 10
)

var idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Issue is a single linter finding.
type Issue struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Message
}

// SnippetResult holds the findings for one snippet.
type SnippetResult struct {
	// ID is the snippet id, or "#<index>" when the snippet has none.
	ID       string  `json:"id"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the snippet has neither errors nor warnings.
func (r SnippetResult) Valid() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

func (r *SnippetResult) errorf(rule Rule, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

func (r *SnippetResult) warnf(rule Rule, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// ValidateSnippet lints one snippet. Missing required fields, a malformed id,
// an unknown category and declared placeholders absent from the code are
// errors. Everything else is a warning.
func ValidateSnippet(s types.Snippet) SnippetResult {
	result := SnippetResult{
		ID:       s.ID,
		Errors:   []Issue{},
		Warnings: []Issue{},
	}

	for _, field := range []struct {
		name    string
		missing bool
	}{
		{"id", s.ID == ""},
		{"category", s.Category == ""},
		{"label", s.Label == ""},
		{"description", s.Description == ""},
		{"code", s.Code == ""},
		{"placeholders", s.Placeholders == nil},
	} {
		if field.missing {
			result.errorf(RuleRequiredField, "missing required field: %s", field.name)
		}
	}

	if s.ID != "" {
		if !idPattern.MatchString(s.ID) {
			result.errorf(RuleIDFormat, "invalid id %q (only a-z, 0-9 and - allowed)", s.ID)
		}
		if n := utf8.RuneCountInString(s.ID); n < MinIDLength {
			result.warnf(RuleIDLength, "id is very short: %q", s.ID)
		} else if n > MaxIDLength {
			result.warnf(RuleIDLength, "id is very long: %q", s.ID)
		}
	}

	if s.Category != "" && !types.IsValidCategory(s.Category) {
		result.errorf(RuleCategory, "invalid category: %q", s.Category)
	}

	if s.Label != "" && utf8.RuneCountInString(s.Label) < MinLabelLength {
		result.warnf(RuleLabelLength, "label is very short: %q", s.Label)
	}

	if s.Description != "" && utf8.RuneCountInString(s.Description) < MinDescriptionLength {
		result.warnf(RuleDescriptionLength, "description is too short: %q", s.Description)
	}

	if s.Code != "" {
		if utf8.RuneCountInString(s.Code) < MinCodeLength {
			result.warnf(RuleCodeLength, "code is very short")
		}

		if s.Placeholders != nil {
			for _, name := range s.Placeholders {
				if !strings.Contains(s.Code, placeholder.Format(name)) {
					result.errorf(RuleDeclaredPlaceholder, "placeholder %q not found in code", name)
				}
			}

			// One warning per occurrence, repeated uses included.
			for _, token := range placeholder.Occurrences(s.Code) {
				if !slices.Contains(s.Placeholders, token.Name) {
					result.warnf(RuleUndeclared, "placeholder %q used but not declared", token.Name)
				}
			}
		}
	}

	if utf8.RuneCountInString(s.Example) < MinExampleLength {
		result.warnf(RuleExample, "example missing or too short")
	}

	return result
}

// Report is the outcome of linting a whole document.
type Report struct {
	TotalSnippets        int             `json:"total_snippets"`
	ValidSnippets        int             `json:"valid_snippets"`
	SnippetsWithErrors   int             `json:"snippets_with_errors"`
	SnippetsWithWarnings int             `json:"snippets_with_warnings"`
	TotalErrors          int             `json:"total_errors"`
	TotalWarnings        int             `json:"total_warnings"`
	DuplicateIDs         []string        `json:"duplicate_ids"`
	Document             []Issue         `json:"document"`
	Details              []SnippetResult `json:"details"`
}

// Passed reports whether the document has no errors. With strict set,
// warnings also fail it.
func (r *Report) Passed(strict bool) bool {
	if r.TotalErrors > 0 {
		return false
	}
	return !strict || r.TotalWarnings == 0
}

// ValidateDocument lints the document structure and every snippet. Each
// repeated occurrence of an id counts as one error.
func ValidateDocument(doc *types.Document) *Report {
	report := &Report{
		DuplicateIDs: []string{},
		Document:     []Issue{},
		Details:      []SnippetResult{},
	}
	if doc == nil {
		doc = &types.Document{}
	}

	if doc.Version == "" {
		report.Document = append(report.Document, Issue{Rule: RuleVersion, Message: "missing version"})
		report.TotalErrors++
	}

	report.TotalSnippets = len(doc.Snippets)

	seen := make(map[string]bool, len(doc.Snippets))
	for _, s := range doc.Snippets {
		if s.ID == "" {
			continue
		}
		if seen[s.ID] {
			report.DuplicateIDs = append(report.DuplicateIDs, s.ID)
		}
		seen[s.ID] = true
	}
	if len(report.DuplicateIDs) > 0 {
		report.Document = append(report.Document, Issue{
			Rule:    RuleDuplicateID,
			Message: "duplicate ids: " + strings.Join(report.DuplicateIDs, ", "),
		})
		report.TotalErrors += len(report.DuplicateIDs)
	}

	for i, s := range doc.Snippets {
		result := ValidateSnippet(s)
		if result.ID == "" {
			result.ID = fmt.Sprintf("#%d", i)
		}
		report.Details = append(report.Details, result)

		if len(result.Errors) > 0 {
			report.SnippetsWithErrors++
			report.TotalErrors += len(result.Errors)
		}
		if len(result.Warnings) > 0 {
			report.SnippetsWithWarnings++
			report.TotalWarnings += len(result.Warnings)
		}
		if result.Valid() {
			report.ValidSnippets++
		}
	}

	return report
}
