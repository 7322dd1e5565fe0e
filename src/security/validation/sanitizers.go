// src/security/validation/sanitizers.go
package validation

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictHTMLPolicy *bluemonday.Policy

	// Common XSS vectors, only used to flag suspicious server data in the logs.
	xssPatternsRegex = regexp.MustCompile(
		`(?i)<script|onerror=|onmouseover=|onfocus=|onload=|javascript:|vbscript:|<iframe|<object|<embed|<style|<link`,
	)
)

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy() // Removes all HTML tags
}

// SanitizeText removes all HTML tags and attributes from an input string.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// maxDecodeRounds bounds how many layers of entity encoding DisplayText peels off.
const maxDecodeRounds = 4

// DisplayText prepares server-supplied free text for display. Entities are decoded
// before sanitizing, and the two steps repeat until decoding the sanitized text gives
// back its input, so entity-encoded markup cannot survive as live tags. Text that has
// not settled after maxDecodeRounds is returned still escaped.
func DisplayText(s string) string {
	for i := 0; i < maxDecodeRounds; i++ {
		decoded := html.UnescapeString(s)
		plain := html.UnescapeString(SanitizeText(decoded))
		if plain == decoded {
			return strings.TrimSpace(StripUnprintable(plain))
		}
		s = plain
	}
	return strings.TrimSpace(StripUnprintable(SanitizeText(s)))
}

// LooksLikeMarkupInjection reports whether s contains a common XSS vector.
func LooksLikeMarkupInjection(s string) bool {
	return xssPatternsRegex.MatchString(s)
}
