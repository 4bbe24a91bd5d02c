package grading

import (
	"regexp"
	"strings"
)

var (
	// trailing "(1-2)" / "1-2" range left behind by the scraper
	rangeSuffix = regexp.MustCompile(`\(?\s*\d+\s*-\s*\d+\s*\)?\s*$`)
	// "2024년도 ..." trailer; everything from the year on is noise
	yearMarker = regexp.MustCompile(`\b\d{4}\s*년도`)
)

// NormalizeAnswer canonicalizes an official answer key into a comparable
// token: "1".."5" when the cleaned text starts with one of those digits,
// otherwise the cleaned text itself. Empty input yields "".
//
// It is applied to stored official answers only; submitted answers are
// compared verbatim after trimming.
func NormalizeAnswer(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(rangeSuffix.ReplaceAllString(text, ""))
	if loc := yearMarker.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[:loc[0]])
	}
	if text != "" && text[0] >= '1' && text[0] <= '5' {
		return text[:1]
	}
	return text
}

// NormalizeOX trims and upper-cases an O/X value.
func NormalizeOX(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsOX reports whether v is a recognized O/X token.
func IsOX(v string) bool {
	return v == "O" || v == "X"
}
