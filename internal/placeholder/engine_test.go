package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected []string
	}{
		{
			name:     "first appearance order without duplicates",
			code:     "{{NAME}} and {{AGE}} and {{NAME}}",
			expected: []string{"NAME", "AGE"},
		},
		{
			name:     "no placeholders",
			code:     "const x = 1",
			expected: []string{},
		},
		{
			name:     "case sensitive",
			code:     "{{name}} {{NAME}}",
			expected: []string{"name", "NAME"},
		},
		{
			name:     "digits and underscores",
			code:     "{{TABLE_1}}{{_x}}{{2}}",
			expected: []string{"TABLE_1", "_x", "2"},
		},
		{
			name:     "whitespace inside delimiters is not a token",
			code:     "{{ NAME }} {{NAME }} {{ NAME}}",
			expected: []string{},
		},
		{
			name:     "unmatched open delimiter",
			code:     "{{NAME and {{AGE}}",
			expected: []string{"AGE"},
		},
		{
			name:     "empty body",
			code:     "{{}}",
			expected: []string{},
		},
		{
			name:     "hyphen is not part of the grammar",
			code:     "{{TABLE-NAME}}",
			expected: []string{},
		},
		{
			name:     "triple braces contain a token",
			code:     "{{{ID}}}",
			expected: []string{"ID"},
		},
		{
			name:     "javascript object literal braces",
			code:     "const o = {a: {b: 1}}; notify('{{MESSAGE}}')",
			expected: []string{"MESSAGE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.code))
		})
	}
}

func TestOccurrences(t *testing.T) {
	code := `a {{X}} b {{Y}} {{X}}`
	tokens := Occurrences(code)

	require.Len(t, tokens, 3)
	assert.Equal(t, Token{Name: "X", Start: 2, End: 7}, tokens[0])
	assert.Equal(t, "Y", tokens[1].Name)
	assert.Equal(t, "{{X}}", code[tokens[2].Start:tokens[2].End])
	assert.Equal(t, "{{Y}}", tokens[1].String())
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		values   map[string]string
		expected string
	}{
		{
			name:     "simple replace",
			code:     `const x = "{{VALUE}}"`,
			values:   map[string]string{"VALUE": "42"},
			expected: `const x = "42"`,
		},
		{
			name:     "repeated token gets same value",
			code:     "{{A}}-{{A}}-{{A}}",
			values:   map[string]string{"A": "x"},
			expected: "x-x-x",
		},
		{
			name:     "unknown tokens left verbatim",
			code:     "{{A}} {{B}}",
			values:   map[string]string{"A": "1"},
			expected: "1 {{B}}",
		},
		{
			name:     "nil values",
			code:     "{{A}}",
			values:   nil,
			expected: "{{A}}",
		},
		{
			name:     "empty string value erases token",
			code:     "[{{A}}]",
			values:   map[string]string{"A": ""},
			expected: "[]",
		},
		{
			name:     "values are not re-expanded",
			code:     "{{A}} {{B}}",
			values:   map[string]string{"A": "{{B}}", "B": "done"},
			expected: "{{B}} done",
		},
		{
			name:     "malformed tokens untouched",
			code:     "{{ A }} {A} {{A",
			values:   map[string]string{"A": "x"},
			expected: "{{ A }} {A} {{A",
		},
		{
			name:     "unicode around tokens",
			code:     "é{{A}}ü",
			values:   map[string]string{"A": "ß"},
			expected: "éßü",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Replace(tt.code, tt.values))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("all provided", func(t *testing.T) {
		result := Validate([]string{"NAME", "AGE"}, map[string]string{"NAME": "John", "AGE": "30"})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Missing)
		assert.NotNil(t, result.Missing)
	})

	t.Run("missing values keep required order", func(t *testing.T) {
		result := Validate([]string{"NAME", "AGE", "EMAIL"}, map[string]string{"NAME": "John"})
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"AGE", "EMAIL"}, result.Missing)
	})

	t.Run("empty string counts as provided", func(t *testing.T) {
		result := Validate([]string{"NAME"}, map[string]string{"NAME": ""})
		assert.True(t, result.Valid)
	})

	t.Run("nothing required", func(t *testing.T) {
		result := Validate(nil, nil)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Missing)
	})
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, Count("{{A}} {{B}} {{A}}"))
	assert.Equal(t, 0, Count("no placeholders"))
	assert.Equal(t, 1, Count("{{ A}} {{A}}"))
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("{{VALUE}}"))
	assert.False(t, HasPlaceholders("no placeholders"))
	assert.False(t, HasPlaceholders("{{}}"))
}

func TestCreateEmptyValues(t *testing.T) {
	values := CreateEmptyValues("{{NAME}} {{AGE}} {{NAME}}")

	assert.Equal(t, map[string]string{"NAME": "", "AGE": ""}, values)
	assert.Empty(t, CreateEmptyValues("plain"))
}

func TestReplaceWithDefaults(t *testing.T) {
	t.Run("values win over defaults", func(t *testing.T) {
		result := ReplaceWithDefaults(
			"{{NAME}} is {{AGE}} years old",
			map[string]string{"NAME": "John"},
			map[string]string{"AGE": "25", "NAME": "Default"},
		)
		assert.Equal(t, "John is 25 years old", result)
	})

	t.Run("neither map leaves token", func(t *testing.T) {
		result := ReplaceWithDefaults("{{A}} {{B}}", nil, map[string]string{"A": "a"})
		assert.Equal(t, "a {{B}}", result)
	})

	t.Run("empty value still wins", func(t *testing.T) {
		result := ReplaceWithDefaults("<{{A}}>", map[string]string{"A": ""}, map[string]string{"A": "d"})
		assert.Equal(t, "<>", result)
	})
}

func TestFormatAndIsValidName(t *testing.T) {
	assert.Equal(t, "{{TABLE}}", Format("TABLE"))
	assert.True(t, IsValidName("TABLE_NAME_2"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("TABLE NAME"))
	assert.False(t, IsValidName("table-name"))
}

func TestRoundTripCompleteness(t *testing.T) {
	code := `const row = await {{TABLE}}.find("{{ID}}"); notify("{{ID}} loaded")`
	values := CreateEmptyValues(code)
	for name := range values {
		values[name] = "v_" + name
	}

	expanded := Replace(code, values)
	assert.Empty(t, Extract(expanded))
	assert.Equal(t, expanded, Replace(expanded, values))
}
