package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "windows line endings",
			input:    "line one\r\nline two\r\n",
			expected: "line one\nline two",
		},
		{
			name:     "bare carriage returns",
			input:    "line one\rline two",
			expected: "line one\nline two",
		},
		{
			name:     "trailing spaces stripped per line",
			input:    "line one   \nline two\t\n",
			expected: "line one\nline two",
		},
		{
			name:     "blank line runs collapse to one",
			input:    "para one\n\n\n\n\npara two",
			expected: "para one\n\npara two",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "\n\n  text  \n\n",
			expected: "text",
		},
		{
			name:     "empty input",
			input:    "   \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeWhitespace(tt.input))
		})
	}
}

func TestRemoveShowMoreLess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "show more and show less removed",
			input:    "About the role\nShow more\nResponsibilities\nShow less",
			expected: "About the role\nResponsibilities",
		},
		{
			name:     "case insensitive",
			input:    "intro\nSHOW MORE\nbody",
			expected: "intro\nbody",
		},
		{
			name:     "blank lines dropped",
			input:    "one\n\n  \ntwo",
			expected: "one\ntwo",
		},
		{
			name:     "show more inside a sentence survives",
			input:    "click show more to expand",
			expected: "click show more to expand",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoveShowMoreLess(tt.input))
		})
	}
}

func TestClampChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "under the limit",
			input:    "short text",
			max:      100,
			expected: "short text",
		},
		{
			name:     "over the limit",
			input:    "abcdefghij",
			max:      4,
			expected: "abcd",
		},
		{
			name:     "zero means unlimited",
			input:    "  anything goes  ",
			max:      0,
			expected: "anything goes",
		},
		{
			name:     "multibyte runes are not split",
			input:    "héllo wörld",
			max:      5,
			expected: "héllo",
		},
		{
			name:     "trailing whitespace after cut is trimmed",
			input:    "word      more",
			max:      8,
			expected: "word",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampChars(tt.input, tt.max))
		})
	}
}

func TestNormalizeSpacedText(t *testing.T) {
	spaced := "S e n i o r  S o f t w a r e  E n g i n e e r  w i t h  G o  a n d  K u b e r n e t e s"

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal text only collapses whitespace runs",
			input:    "Senior   Go    engineer",
			expected: "Senior Go engineer",
		},
		{
			name:     "empty input",
			input:    "  \n ",
			expected: "",
		},
		{
			name:     "letter-spaced text is joined",
			input:    spaced,
			expected: "SeniorSoftwareEngineerwithGoandKubernetes",
		},
		{
			name:     "punctuation keeps its spacing",
			input:    spaced + " , 2 0 2 4",
			expected: "SeniorSoftwareEngineerwithGoandKubernetes , 2024",
		},
		{
			name: "long normal prose is left alone",
			input: strings.Repeat("normal words that a posting would contain ", 10) +
				"with plenty of regular text",
			expected: strings.TrimSpace(strings.Repeat("normal words that a posting would contain ", 10) +
				"with plenty of regular text"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSpacedText(tt.input))
		})
	}
}

func TestCountSpacedPairs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "no single-letter tokens", input: "hello world", expected: 0},
		{name: "two adjacent letters", input: "a b", expected: 1},
		{name: "three adjacent letters", input: "a b c", expected: 2},
		{name: "letters split by a word", input: "a word b", expected: 0},
		{name: "digits count as word runes", input: "1 2 3", expected: 2},
		{name: "punctuation does not", input: "a , b", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countSpacedPairs(tt.input))
		})
	}
}
