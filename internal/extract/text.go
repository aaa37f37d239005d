// Package extract turns raw inputs (PDF uploads, LinkedIn job pages, plain
// text) into clean text for the analysis pipeline.
package extract

import (
	"regexp"
	"strings"
)

var (
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
)

// SanitizeWhitespace normalizes line endings, strips trailing spaces, and
// collapses runs of blank lines down to one.
func SanitizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// RemoveShowMoreLess drops LinkedIn's "Show more"/"Show less" toggle labels
// and blank lines from scraped job text.
func RemoveShowMoreLess(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		low := strings.ToLower(line)
		if low == "show more" || low == "show less" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ClampChars truncates text to at most max characters. Non-positive max
// means unlimited.
func ClampChars(text string, max int) string {
	if max <= 0 {
		return strings.TrimSpace(text)
	}
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}
	return strings.TrimSpace(string(runes))
}

// spacedPairThreshold is the number of single-letter word pairs at which text
// is judged to be letter-spaced ("J o h n  D o e"), a common artifact of PDF
// extraction.
const spacedPairThreshold = 25

// NormalizeSpacedText repairs letter-spaced text by removing the whitespace
// between adjacent word characters. Normal text only gets runs of whitespace
// collapsed to a single space.
func NormalizeSpacedText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if countSpacedPairs(text) < spacedPairThreshold {
		return strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
	}

	collapsed := collapseLetterSpacing(text)
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(collapsed, " "))
}

// countSpacedPairs counts adjacent whitespace-separated tokens that are both
// single word characters.
func countSpacedPairs(text string) int {
	tokens := strings.Fields(text)
	count := 0
	for i := 0; i+1 < len(tokens); i++ {
		if isSingleWordRune(tokens[i]) && isSingleWordRune(tokens[i+1]) {
			count++
		}
	}
	return count
}

func isSingleWordRune(token string) bool {
	runes := []rune(token)
	return len(runes) == 1 && isWordRune(runes[0])
}

// collapseLetterSpacing removes whitespace runs whose neighbors on both
// sides are word characters.
func collapseLetterSpacing(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(runes) {
		r := runes[i]
		if !isSpaceRune(r) {
			b.WriteRune(r)
			i++
			continue
		}

		// Find the end of this whitespace run.
		j := i
		for j < len(runes) && isSpaceRune(runes[j]) {
			j++
		}

		prevIsWord := i > 0 && isWordRune(runes[i-1])
		nextIsWord := j < len(runes) && isWordRune(runes[j])
		if !prevIsWord || !nextIsWord {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}

	return b.String()
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// isWordRune matches ASCII letters and digits plus the Latin-1 accented
// letter ranges.
func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0xC0 && r <= 0xFF && r != 0xD7 && r != 0xF7:
		return true
	}
	return false
}
