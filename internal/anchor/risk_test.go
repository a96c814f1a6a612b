package anchor

import (
	"context"
	"strings"
	"testing"

	"github.com/legalease/docanchor/internal/ocrgeom"
	"github.com/legalease/docanchor/internal/providers"
)

func TestObligationScore(t *testing.T) {
	t.Run("strong terms score highest", func(t *testing.T) {
		score := ObligationScore("Tenant shall indemnify the landlord")
		if score < 5 {
			t.Errorf("indemnification should score at least 5, got %d", score)
		}
	})

	t.Run("financial terms", func(t *testing.T) {
		score := ObligationScore("a late fee of 2% applies")
		// "late fee", "fee", and "%" each contribute.
		if score < 6 {
			t.Errorf("expected at least 6, got %d", score)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if ObligationScore("") != 0 {
			t.Error("empty text must score zero")
		}
	})

	t.Run("length bonus is capped", func(t *testing.T) {
		long := strings.Repeat("deliver the monthly report ", 40)
		short := "deliver the monthly report"
		if ObligationScore(long)-ObligationScore(short) > 5 {
			t.Error("length bonus should cap at 5")
		}
	})
}

func TestIsRisky(t *testing.T) {
	risky := []string{
		"Tenant shall indemnify and hold harmless the landlord",
		"Agreement may be terminated for convenience",
		"Disputes are subject to the exclusive jurisdiction of the courts of Mumbai",
		"Pay $5,000 upon execution",
		"Liquidated damages accrue per day of delay",
	}
	for _, text := range risky {
		if !IsRisky(text) {
			t.Errorf("expected risky: %q", text)
		}
	}

	benign := []string{
		"",
		"Provide a copy of the schedule to the manager",
		"Keep the premises clean",
	}
	for _, text := range benign {
		if IsRisky(text) {
			t.Errorf("expected benign: %q", text)
		}
	}
}

func TestRiskHighlights(t *testing.T) {
	ctx := context.Background()
	doc := Document{
		Pages: []string{
			"Schedule of works.\nTenant shall indemnify the landlord against all claims.\nSigned by both parties.",
		},
	}
	loc := newTextLocator()

	t.Run("risky obligation anchored with risk suffix", func(t *testing.T) {
		matches := loc.RiskHighlights(ctx, doc, []string{
			"Tenant shall indemnify the landlord against all claims",
			"Keep the premises clean",
		})
		if len(matches) != 1 {
			t.Fatalf("expected 1 highlight, got %d", len(matches))
		}
		m := matches[0]
		if !strings.HasSuffix(m.Strategy, SuffixRisk) {
			t.Errorf("strategy should carry the risk suffix: %s", m.Strategy)
		}
		got := doc.Pages[0][m.CharStart:m.CharEnd]
		if got != "Tenant shall indemnify the landlord against all claims." {
			t.Errorf("unexpected highlighted line: %q", got)
		}
	})

	t.Run("falls back to top scored when nothing is risky", func(t *testing.T) {
		fallbackDoc := Document{
			Pages: []string{"Please provide a copy of the schedule to the manager today."},
		}
		matches := loc.RiskHighlights(ctx, fallbackDoc, []string{
			"Provide a copy of the schedule to the manager",
		})
		if len(matches) != 1 {
			t.Fatalf("expected fallback highlight, got %d", len(matches))
		}
	})

	t.Run("duplicate obligations deduplicate", func(t *testing.T) {
		matches := loc.RiskHighlights(ctx, doc, []string{
			"Tenant shall indemnify the landlord against all claims",
			"Tenant shall indemnify the landlord against all claims",
		})
		if len(matches) != 1 {
			t.Errorf("expected 1 deduplicated highlight, got %d", len(matches))
		}
	})

	t.Run("no obligations", func(t *testing.T) {
		if matches := loc.RiskHighlights(ctx, doc, nil); len(matches) != 0 {
			t.Errorf("expected no highlights, got %+v", matches)
		}
	})

	t.Run("cap bounds the obligations anchored, not just the output", func(t *testing.T) {
		capDoc := Document{
			Pages: []string{"Tenant shall pay a late fee of 5% by the due date."},
		}
		obligations := []string{
			"Borrower shall indemnify the guarantor against every claim",
			"Supplier may terminate without notice",
			"Tenant shall pay a late fee of 5%",
		}
		// Only the third obligation appears in the document. With the cap
		// below three, it is never located at all.
		capped := NewLocator(Options{BatchCap: 2})
		if matches := capped.RiskHighlights(ctx, capDoc, obligations); len(matches) != 0 {
			t.Errorf("expected no highlights past the cap, got %+v", matches)
		}
		if matches := loc.RiskHighlights(ctx, capDoc, obligations); len(matches) != 1 {
			t.Errorf("expected 1 highlight under the default cap, got %d", len(matches))
		}
	})
}

func TestRiskHighlightsWithGeometry(t *testing.T) {
	ctx := context.Background()
	doc := Document{
		ID:         "doc-12",
		Pages:      []string{"The security deposit shall be forfeited on default."},
		PageImages: []string{testDataURI("page0")},
	}

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
	loc := NewLocator(Options{
		Geometry: ocrgeom.NewBuilder(mock, ocrgeom.NewMemoryStore(), nil),
	})

	matches := loc.RiskHighlights(ctx, doc, []string{
		"The security deposit shall be forfeited on default",
	})
	if len(matches) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(matches))
	}
	m := matches[0]
	if m.Strategy != StrategyNormalized+SuffixRisk+SuffixOCR {
		t.Errorf("unexpected strategy tag order: %s", m.Strategy)
	}
	if len(m.Boxes) != 1 {
		t.Errorf("expected a bounding box, got %d", len(m.Boxes))
	}
}
