package stringutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlPattern          = regexp.MustCompile(`(?i)(https?://|ftp://|www\.)[^\s]+`)
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
)

const ellipsis = "..."

// ConversationTitle derives a short title from the first user message.
// Falls back to fallback when nothing printable is left.
func ConversationTitle(content string, maxRunes int, fallback string) string {
	content = markdownLinkPattern.ReplaceAllString(content, "$1")
	content = urlPattern.ReplaceAllString(content, "")

	var b strings.Builder
	for _, r := range content {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || strings.ContainsRune(".,!?-'", r) {
			b.WriteRune(r)
		}
	}
	title := strings.TrimSpace(multiSpacePattern.ReplaceAllString(b.String(), " "))
	title = strings.TrimRight(title, " .,!?-'")
	if title == "" {
		return fallback
	}
	return Truncate(title, maxRunes)
}

// Truncate shortens s to at most maxRunes runes, preferring a word boundary.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	limit := maxRunes - len(ellipsis)
	if limit <= 0 {
		return string(runes[:maxRunes])
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = strings.TrimRight(cut[:i], " ")
	}
	return cut + ellipsis
}
