// Package placeholder implements the {{TOKEN}} templating grammar used by
// snippet code templates.
//
// A token is an identifier made of ASCII letters, digits and underscores
// wrapped in a double-brace pair with no surrounding whitespace:
//
//	const msg = "{{MESSAGE}}"
//
// Anything else that looks brace-like (single braces, unmatched "{{",
// whitespace inside the delimiters) is ordinary text. The engine never parses
// the host language and never reports malformed tokens.
//
// Every function in this package is pure and safe for concurrent use.
package placeholder

import (
	"regexp"
	"strings"
)

const (
	// OpenDelim starts a token.
	OpenDelim = "{{"
	// CloseDelim ends a token.
	CloseDelim = "}}"
)

var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Token is one recognized placeholder occurrence in a code string.
type Token struct {
	Name string
	// Start and End are byte offsets of the full token, delimiters included.
	Start int
	End   int
}

// String renders the token as it appears in code.
func (t Token) String() string {
	return Format(t.Name)
}

// ValidationResult reports whether every required placeholder has a value.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// Format builds the token text for name.
func Format(name string) string {
	return OpenDelim + name + CloseDelim
}

// IsValidName reports whether name matches the token body grammar.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Occurrences returns every recognized token in code, left to right.
func Occurrences(code string) []Token {
	matches := tokenPattern.FindAllStringSubmatchIndex(code, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, Token{
			Name:  code[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return tokens
}

// Extract returns the distinct token names in code in order of first
// appearance.
func Extract(code string) []string {
	occurrences := Occurrences(code)
	names := make([]string, 0, len(occurrences))
	seen := make(map[string]struct{}, len(occurrences))
	for _, tok := range occurrences {
		if _, ok := seen[tok.Name]; ok {
			continue
		}
		seen[tok.Name] = struct{}{}
		names = append(names, tok.Name)
	}
	return names
}

// Replace substitutes every token that has an entry in values. Tokens without
// a value are kept verbatim. Substitution is a single pass: a value that
// contains token syntax is inserted literally and never expanded.
func Replace(code string, values map[string]string) string {
	if len(values) == 0 {
		return code
	}

	occurrences := Occurrences(code)
	if len(occurrences) == 0 {
		return code
	}

	var b strings.Builder
	b.Grow(len(code))
	last := 0
	for _, tok := range occurrences {
		value, ok := values[tok.Name]
		if !ok {
			continue
		}
		b.WriteString(code[last:tok.Start])
		b.WriteString(value)
		last = tok.End
	}
	b.WriteString(code[last:])
	return b.String()
}

// Validate checks that every required name is a key of provided. An empty
// string counts as provided. Missing names keep the order of required.
func Validate(required []string, provided map[string]string) ValidationResult {
	missing := make([]string, 0)
	for _, name := range required {
		if _, ok := provided[name]; !ok {
			missing = append(missing, name)
		}
	}
	return ValidationResult{
		Valid:   len(missing) == 0,
		Missing: missing,
	}
}

// Count returns the number of token occurrences, repeats included.
func Count(code string) int {
	return len(tokenPattern.FindAllStringIndex(code, -1))
}

// HasPlaceholders reports whether code contains at least one token.
func HasPlaceholders(code string) bool {
	return tokenPattern.MatchString(code)
}

// CreateEmptyValues returns one empty entry per distinct token in code.
func CreateEmptyValues(code string) map[string]string {
	names := Extract(code)
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = ""
	}
	return values
}

// ReplaceWithDefaults replaces tokens using values first, then defaults.
// Tokens found in neither map stay unexpanded.
func ReplaceWithDefaults(code string, values, defaults map[string]string) string {
	merged := make(map[string]string, len(values)+len(defaults))
	for name, value := range defaults {
		merged[name] = value
	}
	for name, value := range values {
		merged[name] = value
	}
	return Replace(code, merged)
}
