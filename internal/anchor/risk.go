package anchor

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Keyword families used to score and classify obligation text. These are
// matched against lowercased text as plain substrings.
var (
	strongRiskTerms = []string{"indemnif", "termination", "terminate", "liability", "unlimited", "default", "remedy", "waiver"}
	financialTerms  = []string{"penalt", "late fee", "interest", "liquidated", "damages", "fee", "fine", "%", "$"}
	covenantTerms   = []string{"non-compete", "noncompete", "non-solicit", "nonsolicit", "exclusiv", "governing law", "jurisdiction", "venue", "sole discretion"}

	riskThemes = [][]string{
		{"assumption of risk", "accepts all risk", "at own risk", "hold harmless", "indemnif"},
		{"unlimited liability", "no cap", "without limit", "waiver", "waive rights"},
		{"confidential", "non-disclosure", "penalt", "fine", "per day", "per word"},
		{"governing law", "jurisdiction", "venue", "exclusive", "sole discretion"},
		{"terminate", "termination for convenience", "default", "remedy"},
		{"liquidated damages", "late fee", "% interest", "interest", "%"},
	}
)

// ObligationScore assigns a heuristic severity score to an obligation
// string. Strong risk terms weigh 5, financial terms 3, restrictive
// covenants 2, deadline cues 1, plus a small length bonus so more specific
// items rank above vague ones.
func ObligationScore(text string) int {
	if text == "" {
		return 0
	}
	s := strings.ToLower(text)
	score := 0
	for _, kw := range strongRiskTerms {
		if strings.Contains(s, kw) {
			score += 5
		}
	}
	for _, kw := range financialTerms {
		if strings.Contains(s, kw) {
			score += 3
		}
	}
	for _, kw := range covenantTerms {
		if strings.Contains(s, kw) {
			score += 2
		}
	}
	if strings.Contains(s, "notice") || strings.Contains(s, "days") {
		score++
	}
	bonus := len(s) / 80
	if bonus > 5 {
		bonus = 5
	}
	return score + bonus
}

// IsRisky reports whether an obligation is risky enough to pre-highlight.
// Any theme hit qualifies, as does a numeric amount paired with a currency
// or percent sign, or a high severity score.
func IsRisky(text string) bool {
	if text == "" {
		return false
	}
	s := strings.ToLower(text)
	for _, theme := range riskThemes {
		for _, kw := range theme {
			if strings.Contains(s, kw) {
				return true
			}
		}
	}
	if containsDigit(s) && (strings.Contains(s, "$") || strings.Contains(s, "%")) {
		return true
	}
	return ObligationScore(text) >= 5
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// RiskHighlights selects risky obligations and anchors each of them,
// deduplicating spans and capping the result like LocateBatch. When no
// obligation trips the risk classifier, the top five by severity score are
// highlighted instead so the viewer is never empty.
func (l *Locator) RiskHighlights(ctx context.Context, doc Document, obligations []string) []Match {
	if len(obligations) == 0 || len(doc.Pages) == 0 {
		return nil
	}

	var risky []string
	type scored struct {
		score int
		text  string
	}
	var all []scored
	for _, txt := range obligations {
		if txt == "" {
			continue
		}
		all = append(all, scored{score: ObligationScore(txt), text: txt})
		if IsRisky(txt) {
			risky = append(risky, txt)
		}
	}
	if len(risky) == 0 {
		sort.SliceStable(all, func(i, j int) bool {
			if all[i].score != all[j].score {
				return all[i].score > all[j].score
			}
			return len(all[i].text) > len(all[j].text)
		})
		for i := 0; i < len(all) && i < 5; i++ {
			risky = append(risky, all[i].text)
		}
	}

	return l.locateBatch(ctx, doc, risky, SuffixRisk)
}
