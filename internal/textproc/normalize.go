package textproc

import (
	"regexp"
	"strings"
)

var (
	bracketsRe   = regexp.MustCompile(`[()\[\]]`)
	nonWordRe    = regexp.MustCompile(`[^\w\s\-+]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, removes brackets, strips characters outside
// word/whitespace/-/+ and collapses runs of whitespace to a single space.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = bracketsRe.ReplaceAllString(text, " ")
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
