package anchor

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/legalease/docanchor/internal/ocrgeom"
	"github.com/legalease/docanchor/internal/providers"
)

func newTextLocator() *Locator {
	return NewLocator(Options{})
}

func TestLocate(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match wins with normalized strategy", func(t *testing.T) {
		doc := Document{
			ID: "doc-1",
			Pages: []string{
				"First page intro.",
				"First line here.\nThe security deposit amount.\nLast line.",
			},
		}

		matches := newTextLocator().Locate(ctx, doc, "Security Deposit")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		m := matches[0]
		if m.Strategy != StrategyNormalized {
			t.Errorf("unexpected strategy: %s", m.Strategy)
		}
		if m.PageIndex != 1 {
			t.Errorf("unexpected page: %d", m.PageIndex)
		}
		// Line expansion: the whole middle line, and nothing past its
		// newline boundaries.
		line := "The security deposit amount."
		got := doc.Pages[1][m.CharStart:m.CharEnd]
		if got != line {
			t.Errorf("expected the full line %q, got %q", line, got)
		}
	})

	t.Run("fuzzy window fallback", func(t *testing.T) {
		doc := Document{
			ID:    "doc-1",
			Pages: []string{"The Tenant shall pay a security deposit of ₹50,000 within 15 days."},
		}
		// Not an exact substring, but a long token window of it is.
		matches := newTextLocator().Locate(ctx, doc, "Tenant shall pay a security deposit immediately please")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		m := matches[0]
		if m.Strategy != StrategyNgram {
			t.Errorf("unexpected strategy: %s", m.Strategy)
		}
		if m.CharStart < 0 || m.CharEnd > len(doc.Pages[0]) || m.CharStart >= m.CharEnd {
			t.Errorf("span out of page bounds: %d..%d", m.CharStart, m.CharEnd)
		}
		span := doc.Pages[0][m.CharStart:m.CharEnd]
		if !strings.Contains(strings.ToLower(span), "deposit") {
			t.Errorf("span should include a salient query token: %q", span)
		}
	})

	t.Run("stop-word-only query matches nothing", func(t *testing.T) {
		doc := Document{Pages: []string{"of something else entirely and the end"}}
		if matches := newTextLocator().Locate(ctx, doc, "the and of"); len(matches) != 0 {
			t.Errorf("expected no matches, got %+v", matches)
		}
	})

	t.Run("stop-word phrase still matches exactly", func(t *testing.T) {
		// The salience bar applies only to the fuzzy window path; a verbatim
		// occurrence wins regardless of token salience.
		doc := Document{Pages: []string{"the and of the and of something else entirely"}}
		matches := newTextLocator().Locate(ctx, doc, "the and of")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Strategy != StrategyNormalized {
			t.Errorf("unexpected strategy: %s", matches[0].Strategy)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		doc := Document{Pages: []string{"some text"}}
		if matches := newTextLocator().Locate(ctx, doc, "   \t "); len(matches) != 0 {
			t.Errorf("expected no matches for blank query, got %+v", matches)
		}
	})

	t.Run("no pages", func(t *testing.T) {
		if matches := newTextLocator().Locate(ctx, Document{}, "anything at all"); len(matches) != 0 {
			t.Errorf("expected no matches, got %+v", matches)
		}
	})

	t.Run("exact outranks fuzzy on a later page", func(t *testing.T) {
		doc := Document{
			Pages: []string{
				"the landlord may retain the security deposit against unpaid rent obligations",
				"The security deposit against unpaid amounts.",
			},
		}
		// Page 0 only yields a window match for this paraphrase; page 1
		// contains the exact phrase and must win despite the later index.
		matches := newTextLocator().Locate(ctx, doc, "security deposit against unpaid amounts")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].PageIndex != 1 || matches[0].Strategy != StrategyNormalized {
			t.Errorf("expected exact match on page 1, got %+v", matches[0])
		}
	})

	t.Run("earliest page breaks ties", func(t *testing.T) {
		doc := Document{
			Pages: []string{
				"intro text\nthe deposit is refundable in full\nclosing",
				"other text\nthe deposit is refundable in full\nclosing",
			},
		}
		matches := newTextLocator().Locate(ctx, doc, "deposit is refundable in full")
		if len(matches) != 1 || matches[0].PageIndex != 0 {
			t.Errorf("expected match on the earliest page, got %+v", matches)
		}
	})

	t.Run("hyphenated line break still matches exactly", func(t *testing.T) {
		doc := Document{Pages: []string{"The parties agree to confi-\ndentiality obligations herein."}}
		matches := newTextLocator().Locate(ctx, doc, "confidentiality obligations")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Strategy != StrategyNormalized {
			t.Errorf("unexpected strategy: %s", matches[0].Strategy)
		}
	})
}

func TestLocateBatch(t *testing.T) {
	ctx := context.Background()
	doc := Document{
		Pages: []string{"clause one text\nthe security deposit is due on signing\nclause two text"},
	}
	loc := newTextLocator()

	t.Run("identical spans deduplicate", func(t *testing.T) {
		matches := loc.LocateBatch(ctx, doc, []string{
			"security deposit is due",
			"the security deposit is due on signing",
		})
		// Both queries land on the same line-expanded span.
		if len(matches) != 1 {
			t.Errorf("expected 1 deduplicated match, got %d", len(matches))
		}
	})

	t.Run("cap bounds the result", func(t *testing.T) {
		var pages []string
		var queries []string
		for i := 0; i < 20; i++ {
			pages = append(pages, "page marker alpha"+strings.Repeat("x", i+1)+" beta gamma delta")
			queries = append(queries, "marker alpha"+strings.Repeat("x", i+1)+" beta gamma")
		}
		capped := NewLocator(Options{BatchCap: 4})
		matches := capped.LocateBatch(ctx, Document{Pages: pages}, queries)
		if len(matches) != 4 {
			t.Errorf("expected cap of 4, got %d", len(matches))
		}
	})
}

func testDataURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestLocateWithGeometry(t *testing.T) {
	ctx := context.Background()

	page := "The security deposit shall be returned."
	doc := Document{
		ID:         "doc-9",
		Pages:      []string{page},
		PageImages: []string{testDataURI("page0")},
	}

	newGeomLocator := func(mock *providers.MockOCR) *Locator {
		return NewLocator(Options{
			Geometry: ocrgeom.NewBuilder(mock, ocrgeom.NewMemoryStore(), nil),
		})
	}

	t.Run("box attached on image-backed page", func(t *testing.T) {
		mock := providers.NewMockOCR()
		mock.Latency = 0
		mock.Result = &providers.OCRResult{
			Text: "The security deposit",
			Words: []providers.Word{
				{Text: "The", Start: 0, End: 3, Box: providers.Quad{X0: 0, Y0: 100, X1: 50, Y1: 120}},
				{Text: "security", Start: 4, End: 12, Box: providers.Quad{X0: 60, Y0: 100, X1: 200, Y1: 120}},
				{Text: "deposit", Start: 13, End: 20, Box: providers.Quad{X0: 210, Y0: 100, X1: 320, Y1: 120}},
			},
			PageWidth:  1000,
			PageHeight: 1000,
			HasOffsets: true,
		}

		matches := newGeomLocator(mock).Locate(ctx, doc, "security deposit")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		m := matches[0]
		if m.Strategy != StrategyNormalized+SuffixOCR {
			t.Errorf("unexpected strategy: %s", m.Strategy)
		}
		if len(m.Boxes) != 1 {
			t.Fatalf("expected 1 box, got %d", len(m.Boxes))
		}
		box := m.Boxes[0]
		// Union of the security and deposit boxes, page fractions, padded.
		if box.X > 0.06 || box.X+box.W < 0.32 {
			t.Errorf("box should span both tokens: %+v", box)
		}
		if box.Y > 0.1 || box.Y+box.H < 0.12 {
			t.Errorf("box vertical extent wrong: %+v", box)
		}
	})

	t.Run("OCR failure degrades to text-only", func(t *testing.T) {
		mock := providers.NewMockOCR()
		mock.Latency = 0
		mock.ShouldFail = true
		mock.RetryDelay = 0

		matches := newGeomLocator(mock).Locate(ctx, doc, "security deposit")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		m := matches[0]
		if m.Strategy != StrategyNormalized {
			t.Errorf("expected text-only strategy, got %s", m.Strategy)
		}
		if len(m.Boxes) != 0 {
			t.Errorf("expected no boxes, got %+v", m.Boxes)
		}
	})

	t.Run("page without image stays text-only", func(t *testing.T) {
		mock := providers.NewMockOCR()
		mock.Latency = 0

		noImage := Document{ID: "doc-9", Pages: []string{page}, PageImages: []string{""}}
		matches := newGeomLocator(mock).Locate(ctx, noImage, "security deposit")
		if len(matches) != 1 || len(matches[0].Boxes) != 0 {
			t.Errorf("expected text-only match, got %+v", matches)
		}
		if mock.RequestCount() != 0 {
			t.Error("engine must not be called when the page has no image")
		}
	})

	t.Run("phrase missing from OCR text drops box", func(t *testing.T) {
		mock := providers.NewMockOCR()
		mock.Latency = 0
		mock.Result = &providers.OCRResult{
			Text: "completely unrelated scan noise",
			Words: []providers.Word{
				{Text: "completely", Start: 0, End: 10},
			},
			PageWidth:  1000,
			PageHeight: 1000,
			HasOffsets: true,
		}

		matches := newGeomLocator(mock).Locate(ctx, doc, "security deposit")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Strategy != StrategyNormalized || len(matches[0].Boxes) != 0 {
			t.Errorf("expected text-only match, got %+v", matches[0])
		}
	})
}

func TestExpandToLines(t *testing.T) {
	text := "first line\nsecond line\nthird line"

	t.Run("expands within a middle line", func(t *testing.T) {
		// "second" is at [11,17).
		s, e := expandToLines(text, 11, 17)
		if text[s:e] != "second line" {
			t.Errorf("expected the full line, got %q", text[s:e])
		}
	})

	t.Run("expands to text boundaries", func(t *testing.T) {
		s, e := expandToLines("no newlines here", 3, 5)
		if s != 0 || e != len("no newlines here") {
			t.Errorf("expected full text, got %d..%d", s, e)
		}
	})

	t.Run("invalid range unchanged", func(t *testing.T) {
		s, e := expandToLines(text, 5, 5)
		if s != 5 || e != 5 {
			t.Errorf("expected unchanged range, got %d..%d", s, e)
		}
	})
}
