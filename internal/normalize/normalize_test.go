package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "lowercases",
			input:    "Web Testing Survey",
			expected: "web testing survey",
		},
		{
			name:     "punctuation removed",
			input:    "foo! (bar), baz?",
			expected: "foo bar baz",
		},
		{
			name:     "diacritics stripped",
			input:    "Ségur, Müller, São",
			expected: "segur muller sao",
		},
		{
			name:     "whitespace collapsed and trimmed",
			input:    "  a \t b\n\nc  ",
			expected: "a b c",
		},
		{
			name:     "underscores dropped",
			input:    "snake_case_title",
			expected: "snakecasetitle",
		},
		{
			name:     "digits kept",
			input:    "COVID-19 in 2020",
			expected: "covid19 in 2020",
		},
		{
			name:     "only punctuation",
			input:    "!?&%",
			expected: "",
		},
		{
			name:     "ligature decomposed",
			input:    "ﬁle",
			expected: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Web Testing Survey",
		"Ségur, Müller!  (São) ",
		"already normalized text",
		"ﬁle_name 42",
		"İstanbul",
	}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "input %q", in)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase and trim", input: "10.1/ABC ", expected: "10.1/abc"},
		{name: "slashes preserved", input: "10.1145/3293882.3330freeze", expected: "10.1145/3293882.3330freeze"},
		{name: "dots preserved", input: " DOI.ORG/x ", expected: "doi.org/x"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Key(tt.input))
		})
	}
}
