// Package match finds the best contiguous span of a query inside a
// normalized haystack. Exact substring search is the caller's first resort;
// this package covers the fallback, sliding token windows of decreasing width
// over the query and looking for each window as an exact phrase.
package match

import "strings"

// MinWindowTokens is the smallest token window considered. Shorter windows
// match boilerplate far too often to be useful anchors.
const MinWindowTokens = 3

// Window describes a phrase match in normalized-haystack coordinates.
type Window struct {
	Start   int // byte offset into the normalized haystack
	End     int // exclusive byte offset
	Tokens  int // tokens in the matched window
	Salient int // salient tokens in the matched window
}

// BestWindow scans contiguous windows of queryTokens from full width down to
// MinWindowTokens and returns the best window whose space-joined phrase
// occurs verbatim in haystack. Windows without a single salient token are
// skipped. Among matches at one width the preference is more tokens, then
// more salient tokens, then earliest position; once any width yields a match,
// narrower widths are not scanned (a longer contiguous match wins even over a
// shorter, more salient one).
func BestWindow(queryTokens []string, salient map[string]bool, haystack string) (Window, bool) {
	if len(queryTokens) == 0 || haystack == "" {
		return Window{}, false
	}

	var best Window
	found := false

	for width := len(queryTokens); width >= MinWindowTokens; width-- {
		for i := 0; i+width <= len(queryTokens); i++ {
			window := queryTokens[i : i+width]

			salCount := 0
			for _, tok := range window {
				if salient[tok] {
					salCount++
				}
			}
			if salCount == 0 {
				continue
			}

			phrase := strings.Join(window, " ")
			pos := strings.Index(haystack, phrase)
			if pos < 0 {
				continue
			}

			cand := Window{Start: pos, End: pos + len(phrase), Tokens: width, Salient: salCount}
			if !found || better(cand, best) {
				best = cand
				found = true
			}
		}
		if found {
			break
		}
	}

	return best, found
}

// better reports whether a beats b under the window ordering.
func better(a, b Window) bool {
	if a.Tokens != b.Tokens {
		return a.Tokens > b.Tokens
	}
	if a.Salient != b.Salient {
		return a.Salient > b.Salient
	}
	return a.Start < b.Start
}
