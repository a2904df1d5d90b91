package thread

import (
	"html"
	"regexp"
	"strings"
)

// tagPattern matches from a '<' to the next '>', across newlines.
var tagPattern = regexp.MustCompile(`(?s)<.*?>`)

// Normalizer turns free text into a single clean line.
type Normalizer func(string) string

// Normalize decodes HTML entities, strips tags and collapses whitespace.
// The steps repeat until the output is stable, so text revealed by entity
// decoding (for example "&amp;lt;b&amp;gt;") is cleaned as well and
// Normalize(Normalize(s)) == Normalize(s). After the first pass any change
// shortens the text, which bounds the loop.
func Normalize(text string) string {
	for {
		next := normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizeOnce(text string) string {
	if text == "" {
		return ""
	}
	text = html.UnescapeString(text)
	text = tagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
