// Package slug derives URL-safe secondary identifiers from display names and
// allocates them against a uniqueness oracle backed by the entity store.
//
// Normalize is pure. Allocator.Allocate probes the oracle sequentially
// ("base", "base-1", "base-2", ...) and returns the first free candidate.
// The result is unique as of the last check only; stores must still enforce
// a unique constraint, and Persist re-runs allocation when that constraint
// fires.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliterations covers Latin letters that do not decompose into an ASCII
// base plus combining marks under NFD.
var transliterations = map[rune]string{
	'ß': "ss",
	'æ': "ae", 'Æ': "ae",
	'œ': "oe", 'Œ': "oe",
	'ø': "o", 'Ø': "o",
	'ł': "l", 'Ł': "l",
	'đ': "d", 'Đ': "d",
	'ð': "d", 'Ð': "d",
	'þ': "th", 'Þ': "th",
	'ı': "i",
}

// Normalize converts a display name to its canonical slug base.
// The result contains only [a-z0-9] and single interior hyphens.
// Returns ErrInvalidInput when nothing slug-safe remains.
func Normalize(display string) (string, error) {
	// transform.Chain keeps internal state, so it is built per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, display)
	if err != nil {
		folded = display
	}

	var b strings.Builder
	b.Grow(len(folded))
	gap := false

	emit := func(r rune) {
		if gap && b.Len() > 0 {
			b.WriteByte('-')
		}
		gap = false
		b.WriteRune(r)
	}

	for _, r := range folded {
		if repl, ok := transliterations[r]; ok {
			for _, t := range repl {
				emit(t)
			}
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			emit(r)
			continue
		}
		gap = true
	}

	if b.Len() == 0 {
		return "", ErrInvalidInput
	}
	return b.String(), nil
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	prevHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevHyphen = false
		case c == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return true
}
