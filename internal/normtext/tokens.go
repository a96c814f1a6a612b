package normtext

import (
	"strings"
	"unicode/utf8"
)

// stopwords are tokens too common to anchor a fuzzy match on their own.
// Ported verbatim from the production stop list; legal boilerplate terms
// (shall, pursuant, herein, ...) are included deliberately.
var stopwords = map[string]bool{}

func init() {
	const list = `a an and are as at be by for from has have in into is it its
of on or that the this to will shall with each per including include includes
such if then than whereas whereof thereof herein hereby pursuant under between
both either neither not no nor any all more most least less few upon within
without once when whenever while whose which who whom what where why how their
there they're them they we you your our ours mine his her hers him he she i do
does did can could may might must should would`
	for _, w := range strings.Fields(list) {
		stopwords[w] = true
	}
}

// Tokenize splits normalized text on the single-space separator the
// normalizer guarantees, dropping empty tokens.
func Tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	parts := strings.Split(normalized, " ")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// SalientTokens selects the tokens informative enough to anchor a match:
// anything outside the stop list that is at least four runes long, or carries
// a digit, hyphen, or slash. Numbers and hyphenated compounds are usually
// load-bearing (dates, money, defined terms); short common words are not.
func SalientTokens(tokens []string) map[string]bool {
	salient := make(map[string]bool)
	for _, t := range tokens {
		if stopwords[t] {
			continue
		}
		if utf8.RuneCountInString(t) >= 4 || hasDigit(t) ||
			strings.ContainsRune(t, '-') || strings.ContainsRune(t, '/') {
			salient[t] = true
		}
	}
	return salient
}

// IsStopword reports whether a normalized token is on the stop list.
func IsStopword(token string) bool {
	return stopwords[token]
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
