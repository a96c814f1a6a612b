package anchor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legalease/docanchor/internal/match"
	"github.com/legalease/docanchor/internal/normtext"
	"github.com/legalease/docanchor/internal/ocrgeom"
)

// DefaultBatchCap bounds how many anchors one batch call may produce.
const DefaultBatchCap = 12

// Locator finds the best anchor for a query across a document's pages.
// The geometry builder is optional; without it anchors are text-only.
type Locator struct {
	geom     *ocrgeom.Builder
	pad      float64
	batchCap int
	logger   *slog.Logger
}

// Options configures a Locator. Zero values pick sensible defaults.
type Options struct {
	Geometry   *ocrgeom.Builder
	BoxPadding float64
	BatchCap   int
	Logger     *slog.Logger
}

// NewLocator creates a locator.
func NewLocator(opts Options) *Locator {
	if opts.BoxPadding == 0 {
		opts.BoxPadding = ocrgeom.DefaultBoxPadding
	}
	if opts.BatchCap == 0 {
		opts.BatchCap = DefaultBatchCap
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Locator{
		geom:     opts.Geometry,
		pad:      opts.BoxPadding,
		batchCap: opts.BatchCap,
		logger:   opts.Logger,
	}
}

// candidate is one page-level match before cross-page selection. Offsets are
// raw character positions in the page text; normPos/normEnd index into the
// page's normalized text.
type candidate struct {
	score    int
	page     int
	start    int
	end      int
	normPos  int
	normEnd  int
	strategy string
	norm     normtext.Normalized
}

// betterCandidate orders by score descending, then earliest page, then
// earliest position within the page.
func betterCandidate(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.page != b.page {
		return a.page < b.page
	}
	return a.normPos < b.normPos
}

// Locate finds the single best match for query across the document's pages.
// An exact normalized substring match on any page always outranks a fuzzy
// window match; the winning span is expanded to full lines and, when the
// page is image-backed, augmented with a bounding box. Returns an empty
// slice when the query normalizes to nothing or nothing matches.
func (l *Locator) Locate(ctx context.Context, doc Document, query string) []Match {
	return l.locate(ctx, doc, query, "")
}

// locate implements Locate with an optional strategy suffix tagged onto the
// match before box attachment, so the OCR suffix always comes last.
func (l *Locator) locate(ctx context.Context, doc Document, query, suffix string) []Match {
	qn := normtext.Normalize(query)
	if qn.Text == "" {
		return nil
	}
	qTokens := normtext.Tokenize(qn.Text)
	qSalient := normtext.SalientTokens(qTokens)

	var best candidate
	found := false
	for idx, pageText := range doc.Pages {
		if pageText == "" {
			continue
		}
		pn := normtext.Normalize(pageText)
		if pn.Text == "" {
			continue
		}

		var cand candidate
		if pos := strings.Index(pn.Text, qn.Text); pos >= 0 {
			normEnd := pos + len(qn.Text)
			start := pn.Start(pos)
			end := pn.End(normEnd)
			cand = candidate{
				score:    1_000_000 + (end - start),
				page:     idx,
				start:    start,
				end:      end,
				normPos:  pos,
				normEnd:  normEnd,
				strategy: StrategyNormalized,
				norm:     pn,
			}
		} else {
			w, ok := match.BestWindow(qTokens, qSalient, pn.Text)
			if !ok {
				continue
			}
			start := pn.Start(w.Start)
			end := pn.End(w.End)
			if end <= start {
				continue
			}
			cand = candidate{
				score:    w.Tokens*100 + w.Salient*10,
				page:     idx,
				start:    start,
				end:      end,
				normPos:  w.Start,
				normEnd:  w.End,
				strategy: StrategyNgram,
				norm:     pn,
			}
		}

		if !found || betterCandidate(cand, best) {
			best = cand
			found = true
		}
	}
	if !found {
		return nil
	}

	start, end := expandToLines(doc.Pages[best.page], best.start, best.end)
	m := Match{
		PageIndex: best.page,
		CharStart: start,
		CharEnd:   end,
		Strategy:  best.strategy + suffix,
	}

	// The normalized phrase actually matched on the page, used to relocate
	// the same span inside the OCR aggregate.
	phrase := best.norm.Text[best.normPos:best.normEnd]
	l.attachBox(ctx, doc, &m, phrase, qn.Text, qTokens, qSalient)

	return []Match{m}
}

// LocateBatch resolves several queries at once, deduplicating identical
// (page, start, end) spans and capping the result count. Used for
// pre-highlighting many flagged passages in one pass.
func (l *Locator) LocateBatch(ctx context.Context, doc Document, queries []string) []Match {
	return l.locateBatch(ctx, doc, queries, "")
}

func (l *Locator) locateBatch(ctx context.Context, doc Document, queries []string, suffix string) []Match {
	// The cap bounds work as well as output: queries beyond it are never
	// located at all, since each locate call scans every page and may
	// trigger an OCR build.
	if len(queries) > l.batchCap {
		queries = queries[:l.batchCap]
	}

	type span struct{ page, start, end int }
	seen := make(map[span]bool)

	var out []Match
	for _, q := range queries {
		if len(out) >= l.batchCap {
			break
		}
		for _, m := range l.locate(ctx, doc, q, suffix) {
			key := span{m.PageIndex, m.CharStart, m.CharEnd}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
			if len(out) >= l.batchCap {
				break
			}
		}
	}
	return out
}

// attachBox maps the matched phrase onto the page image's OCR geometry and
// attaches the union bounding box. Every failure mode leaves the text-only
// match standing.
func (l *Locator) attachBox(ctx context.Context, doc Document, m *Match, phrase, queryNorm string, qTokens []string, qSalient map[string]bool) {
	if l.geom == nil {
		return
	}
	image := doc.Image(m.PageIndex)
	if image == "" {
		return
	}

	entry, err := l.geom.GetOrBuild(ctx, doc.ID, m.PageIndex, image)
	if err != nil {
		l.logger.Debug("OCR geometry unavailable, text-only anchor",
			"doc_id", doc.ID, "page", m.PageIndex, "error", err)
		return
	}

	// Find the phrase in the OCR aggregate: the page-matched phrase first,
	// then the full normalized query, then a fuzzy window.
	mpos, mend := -1, -1
	if phrase != "" {
		if p := strings.Index(entry.Text, phrase); p >= 0 {
			mpos, mend = p, p+len(phrase)
		}
	}
	if mpos < 0 && queryNorm != "" {
		if p := strings.Index(entry.Text, queryNorm); p >= 0 {
			mpos, mend = p, p+len(queryNorm)
		}
	}
	if mpos < 0 {
		w, ok := match.BestWindow(qTokens, qSalient, entry.Text)
		if !ok {
			return
		}
		mpos, mend = w.Start, w.End
	}
	if mend <= mpos {
		return
	}

	agg := normtext.Normalized{Text: entry.Text, Map: entry.Map}
	rawStart := agg.Start(mpos)
	rawEnd := agg.End(mend)

	box, ok := entry.BoxForRange(rawStart, rawEnd, l.pad)
	if !ok {
		return
	}
	m.Boxes = append(m.Boxes, box)
	m.Strategy += SuffixOCR
}

// expandToLines widens [start, end) to full line boundaries so a highlight
// never clips a partial line.
func expandToLines(text string, start, end int) (int, int) {
	if start < 0 || end < 0 || start >= end {
		return start, end
	}
	n := len(text)
	if n == 0 {
		return start, end
	}
	if end > n {
		end = n
	}

	s := 0
	for i := start - 1; i >= 0; i-- {
		if text[i] == '\n' || text[i] == '\r' {
			s = i + 1
			break
		}
	}
	e := n
	for j := end; j < n; j++ {
		if text[j] == '\n' || text[j] == '\r' {
			e = j
			break
		}
	}
	return s, e
}
