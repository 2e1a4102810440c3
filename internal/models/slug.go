package models

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces       = regexp.MustCompile(`\s+`)
	slugDashes       = regexp.MustCompile(`-+`)

	// SlugPattern is the accepted shape of a listing slug
	SlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// GenerateSlug derives a URL slug from a listing title:
// "Casa Moderna con Piscina" becomes "casa-moderna-con-piscina".
func GenerateSlug(title string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripper, strings.ToLower(title))
	if err != nil {
		plain = strings.ToLower(title)
	}

	slug := slugInvalidChars.ReplaceAllString(plain, "")
	slug = slugSpaces.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
