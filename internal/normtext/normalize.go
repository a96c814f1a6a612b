// Package normtext canonicalizes document text for matching.
//
// Extraction engines disagree about whitespace, quote glyphs, hyphenation and
// accents, so every comparison in this module runs over a normalized form.
// Normalization keeps a position map back into the raw string so that a match
// found in normalized space can be reported as offsets into the page text the
// viewer actually renders.
package normtext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalized pairs canonicalized text with a map back to raw byte offsets.
// Map is parallel to Text: Map[i] is the byte offset in the raw string of the
// character that produced Text[i]. For multi-character collapses the map
// points at the first consumed source byte. len(Text) == len(Map) always, and
// Map is non-decreasing.
type Normalized struct {
	Text string
	Map  []int
}

// Start returns the raw byte offset for a position in the normalized text.
func (n Normalized) Start(pos int) int {
	if pos < 0 || pos >= len(n.Map) {
		return 0
	}
	return n.Map[pos]
}

// End returns the exclusive raw byte offset for a normalized end position.
// endPos is exclusive in normalized space; the result is exclusive in raw
// space (one past the byte that produced the last normalized character).
func (n Normalized) End(endPos int) int {
	if endPos <= 0 || endPos-1 >= len(n.Map) {
		return 0
	}
	return n.Map[endPos-1] + 1
}

// Normalize canonicalizes raw text into a lowercase, whitespace-collapsed,
// punctuation-pruned form. Accents are stripped via NFKD compatibility
// decomposition, soft hyphens and zero-width characters are dropped, a hyphen
// directly before a line break is joined away, quote and dash variants are
// folded, and any character other than letters, digits, hyphen and percent is
// removed. Empty or all-whitespace input yields a zero Normalized.
func Normalize(raw string) Normalized {
	if raw == "" {
		return Normalized{}
	}

	var out strings.Builder
	out.Grow(len(raw))
	idxMap := make([]int, 0, len(raw))

	prevWasSpace := false
	i := 0
	for i < len(raw) {
		r, size := utf8.DecodeRuneInString(raw[i:])

		// Join words hyphenated across a line break: "-\n" vanishes.
		if r == '-' && i+size < len(raw) {
			next, _ := utf8.DecodeRuneInString(raw[i+size:])
			if next == '\n' || next == '\r' {
				i += size + 1
				continue
			}
		}

		// Decompose the rune so accented letters split into base + marks;
		// the marks are pruned below, leaving the bare letter.
		for _, d := range norm.NFKD.String(string(r)) {
			if d == '­' || d == '​' {
				continue
			}
			if unicode.IsSpace(d) {
				if !prevWasSpace {
					out.WriteByte(' ')
					idxMap = append(idxMap, i)
					prevWasSpace = true
				}
				continue
			}
			prevWasSpace = false

			d = foldPunct(d)
			if !(unicode.IsLetter(d) || unicode.IsDigit(d) || d == '-' || d == '%') {
				continue
			}
			d = unicode.ToLower(d)

			n := out.Len()
			out.WriteRune(d)
			for n < out.Len() {
				idxMap = append(idxMap, i)
				n++
			}
		}

		i += size
	}

	text := out.String()

	// Trim leading/trailing collapsed space, keeping the map in step.
	start, end := 0, len(text)
	for start < end && text[start] == ' ' {
		start++
	}
	for end > start && text[end-1] == ' ' {
		end--
	}
	return Normalized{Text: text[start:end], Map: idxMap[start:end]}
}

// foldPunct maps quote and dash glyph variants onto their plain ASCII forms.
func foldPunct(r rune) rune {
	switch r {
	case '“', '”': // curly double quotes
		return '"'
	case '′', '’', '‘', '`', '´', 'ʼ', 'ʹ':
		return '\''
	case '–', '—', '‑': // en dash, em dash, non-breaking hyphen
		return '-'
	}
	return r
}
