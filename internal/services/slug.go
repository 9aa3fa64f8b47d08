package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	minSlugLength = 3
	maxSlugLength = 64
)

// Letters that do not decompose into an ASCII base plus a combining mark.
var slugLetters = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ß", "ss", "æ", "ae", "Æ", "ae",
	"ø", "o", "Ø", "o", "đ", "d", "Đ", "d",
	"ł", "l", "Ł", "l", "þ", "th", "œ", "oe",
)

// NormalizeSlug maps a free-form candidate to the URL-safe form: lowercase ASCII
// letters and digits separated by single hyphens, no leading or trailing hyphen.
// "Ayşe & Mehmet" becomes "ayse-mehmet".
func NormalizeSlug(candidate string) string {
	s := slugLetters.Replace(strings.TrimSpace(candidate))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	out := b.String()
	if len(out) > maxSlugLength {
		out = strings.TrimRight(out[:maxSlugLength], "-")
	}
	return out
}

// DeriveSlug builds a slug from the two honoree names.
func DeriveSlug(partnerOne, partnerTwo string) string {
	return NormalizeSlug(partnerOne + "-" + partnerTwo)
}

// validSlugLength reports whether a normalized slug is long enough to be reserved.
func validSlugLength(slug string) bool {
	return len(slug) >= minSlugLength
}
