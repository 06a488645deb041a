package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps slug length before the id-disambiguation suffix.
const MaxSlugLength = 60

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a document title to a filesystem-safe slug: diacritics
// stripped, lowercased, runs of non-alphanumerics collapsed to single
// dashes.
func Slugify(title string) string {
	if s, _, err := transform.String(deaccent, title); err == nil {
		title = s
	}
	title = strings.ToLower(title)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}
