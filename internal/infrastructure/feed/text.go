package feed

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// SummaryLimit bounds candidate summaries in runes.
const SummaryLimit = 200

const defaultAuthor = "Staff"

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	return collapse(doc.Text())
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

// AuthorName turns "jane@example.org (Jane Doe)" into "Jane Doe" and defaults to Staff.
func AuthorName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultAuthor
	}
	if open := strings.Index(raw, "("); open >= 0 {
		inner := raw[open+1:]
		inner = strings.TrimSuffix(strings.TrimSpace(inner), ")")
		if inner = strings.TrimSpace(inner); inner != "" {
			return inner
		}
	}
	return raw
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
