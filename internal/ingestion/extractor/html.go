// Package extractor turns raw lesson HTML into the plain text the
// chunker consumes.
package extractor

import (
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// TextFromHTML strips tags and collapses whitespace runs to single
// spaces. Tag stripping is deliberately naive: lesson pages are
// platform-rendered fragments, not arbitrary documents.
func TextFromHTML(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
