// Package textformat turns user-entered text into safe HTML.
package textformat

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/noah-isme/gema-assign/internal/models"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// ToHTML renders text written in format as sanitized HTML.
func ToHTML(text, format string) string {
	switch format {
	case models.TextFormatMarkdown:
		var extensions blackfriday.Extensions
		extensions |= blackfriday.NoIntraEmphasis
		extensions |= blackfriday.Tables
		extensions |= blackfriday.FencedCode
		extensions |= blackfriday.Autolink
		extensions |= blackfriday.Strikethrough
		extensions |= blackfriday.SpaceHeadings
		rendered := blackfriday.Run([]byte(text), blackfriday.WithExtensions(extensions))
		return ugcPolicy.Sanitize(string(rendered))
	case models.TextFormatPlain:
		escaped := html.EscapeString(text)
		return strings.ReplaceAll(escaped, "\n", "<br />\n")
	default:
		return ugcPolicy.Sanitize(text)
	}
}

// PlainText strips all markup from text rendered in format.
func PlainText(text, format string) string {
	rendered := ToHTML(text, format)
	stripped := html.UnescapeString(strictPolicy.Sanitize(rendered))
	return strings.Join(strings.Fields(stripped), " ")
}

// Shorten cuts text to at most limit runes at a word boundary and reports whether it cut anything.
func Shorten(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "...", true
}
