// internal/slugify/slugify.go
//
// Slug candidate generation.
//
// • Make(text) ─ converts arbitrary Unicode text into a URL-safe candidate
//   restricted to ASCII a-z, 0-9 and “-”.
// • Fallback(entityType, id) ─ deterministic substitute when Make produces
//   an empty string (e.g., a title made only of diacritics or emoji).
//
// Rules (Make)
// ------------
// 1. NFD-decompose and strip combining marks, so “Café” → “Cafe”.
// 2. Lower-case everything.
// 3. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and whatever non-ASCII survived step 1.
// 4. Trim leading / trailing “-”.
// 5. Truncate to 100 bytes, trimming a dangling “-” if the cut lands on one.
//
// Notes
// -----
// • An empty result is a valid output; callers substitute Fallback().
// • Make is idempotent: Make(Make(x)) == Make(x).
// • Oxford commas, two spaces after periods.

package slugify

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLen caps slug length in bytes.  Callers may truncate earlier.
const maxLen = 100

// deaccent decomposes to NFD, drops combining marks, and recomposes.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts text → lower-kebab ASCII.  Empty output means the input had
// no usable characters; the caller must fall back to Fallback().
func Make(text string) string {
	if stripped, _, err := transform.String(deaccent, text); err == nil {
		text = stripped
	}

	var b strings.Builder
	b.Grow(len(text))

	lastWasDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any remaining non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxLen {
		slug = slug[:maxLen]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// Fallback names an entity that produced an empty slug: "<type>-<id>".
// The type constants are plain ASCII, so the result is always non-empty.
func Fallback(entityType string, entityID uint64) string {
	return entityType + "-" + strconv.FormatUint(entityID, 10)
}
