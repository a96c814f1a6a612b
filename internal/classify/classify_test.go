package classify

import (
	"strings"
	"testing"

	"github.com/legalease/docanchor/internal/config"
)

func letterPage(chars int) string {
	return strings.Repeat("lorem ipsum dolor sit amet ", chars/27+1)[:chars]
}

func TestClassify(t *testing.T) {
	h := config.DefaultHeuristics()

	t.Run("near full page image is scanned", func(t *testing.T) {
		p := PageLayout{
			Width:  612,
			Height: 792,
			// 95% of page area
			ImageBlocks: []Rect{{X0: 0, Y0: 0, X1: 612, Y1: 752.4}},
		}
		if got := Classify(p, h, false); got != ClassScanned {
			t.Errorf("got %s", got)
		}
	})

	t.Run("long text layer without images is digital", func(t *testing.T) {
		p := PageLayout{
			Width:      612,
			Height:     792,
			Text:       letterPage(2000),
			TextBlocks: 8,
		}
		if got := Classify(p, h, false); got != ClassDigital {
			t.Errorf("got %s", got)
		}
	})

	t.Run("sparse text layer is scanned", func(t *testing.T) {
		p := PageLayout{Width: 612, Height: 792, Text: "Page 3"}
		if got := Classify(p, h, false); got != ClassScanned {
			t.Errorf("got %s", got)
		}
	})

	t.Run("force OCR overrides everything", func(t *testing.T) {
		p := PageLayout{Width: 612, Height: 792, Text: letterPage(2000)}
		if got := Classify(p, h, true); got != ClassForcedScan {
			t.Errorf("got %s", got)
		}
	})

	t.Run("pixel area fallback detects scan", func(t *testing.T) {
		p := PageLayout{
			Width:  612,
			Height: 792,
			// no block geometry; 2550x3300 px is a letter page at 300 DPI
			Images: []ImageInfo{{WidthPx: 2550, HeightPx: 3300}},
		}
		if got := Classify(p, h, false); got != ClassScanned {
			t.Errorf("got %s", got)
		}
	})

	t.Run("small decorative image stays digital", func(t *testing.T) {
		p := PageLayout{
			Width:       612,
			Height:      792,
			Text:        letterPage(2000),
			TextBlocks:  8,
			ImageBlocks: []Rect{{X0: 500, Y0: 10, X1: 590, Y1: 80}},
			Images:      []ImageInfo{{WidthPx: 120, HeightPx: 90}},
		}
		if got := Classify(p, h, false); got != ClassDigital {
			t.Errorf("got %s", got)
		}
	})
}

func TestClassifyAmbiguitySignals(t *testing.T) {
	h := config.DefaultHeuristics()
	base := PageLayout{Width: 612, Height: 792, Text: letterPage(2000), TextBlocks: 8}

	t.Run("image area ratio flag", func(t *testing.T) {
		p := base
		// three blocks totalling ~27% of page area
		p.ImageBlocks = []Rect{
			{X0: 0, Y0: 0, X1: 180, Y1: 230},
			{X0: 200, Y0: 0, X1: 380, Y1: 230},
			{X0: 400, Y0: 0, X1: 580, Y1: 230},
		}
		f := Signals(p, h)
		if f.ImageAreaRatio < h.AmbiguousImageAreaRatio {
			t.Errorf("area ratio %v below threshold", f.ImageAreaRatio)
		}
		if got := Classify(p, h, false); got != ClassAmbiguous {
			t.Errorf("got %s", got)
		}
	})

	t.Run("large single image", func(t *testing.T) {
		p := base
		p.ImageBlocks = []Rect{{X0: 0, Y0: 0, X1: 200, Y1: 80}} // 33% of width
		if got := Classify(p, h, false); got != ClassAmbiguous {
			t.Errorf("got %s", got)
		}
	})

	t.Run("fragmented text", func(t *testing.T) {
		p := base
		p.TextBlocks = 60
		if got := Classify(p, h, false); got != ClassAmbiguous {
			t.Errorf("got %s", got)
		}
	})

	t.Run("two image blocks", func(t *testing.T) {
		p := base
		p.ImageBlocks = []Rect{
			{X0: 10, Y0: 10, X1: 80, Y1: 80},
			{X0: 500, Y0: 10, X1: 570, Y1: 80},
		}
		if got := Classify(p, h, false); got != ClassAmbiguous {
			t.Errorf("got %s", got)
		}
	})

	t.Run("noisy non alphanumeric text", func(t *testing.T) {
		p := base
		p.Text = strings.Repeat("|._~#@! ab ", 30)
		if got := Classify(p, h, false); got != ClassAmbiguous {
			t.Errorf("got %s", got)
		}
	})
}

func TestShouldAdoptOCR(t *testing.T) {
	h := config.DefaultHeuristics()

	t.Run("probe finds materially more text", func(t *testing.T) {
		f := Flags{DigitalLen: 400}
		if !ShouldAdoptOCR(f, 600, h) {
			t.Error("expected adoption: 600 >= 480 and growth >= 100")
		}
	})

	t.Run("growth factor met but absolute growth too small", func(t *testing.T) {
		f := Flags{DigitalLen: 100}
		if ShouldAdoptOCR(f, 150, h) {
			t.Error("50 extra chars is below the 100-char growth bar")
		}
	})

	t.Run("near empty digital layer with plausible probe text", func(t *testing.T) {
		f := Flags{DigitalLen: 10}
		if !ShouldAdoptOCR(f, 45, h) {
			t.Error("expected adoption: digital near-empty, probe >= 40 chars")
		}
	})

	t.Run("fragmented page with moderately more probe text", func(t *testing.T) {
		f := Flags{DigitalLen: 500, Fragmented: true}
		if !ShouldAdoptOCR(f, 560, h) {
			t.Error("expected adoption on fragmented page with +60 chars")
		}
	})

	t.Run("probe finds less text keeps digital", func(t *testing.T) {
		f := Flags{DigitalLen: 900}
		if ShouldAdoptOCR(f, 400, h) {
			t.Error("must keep digital extraction")
		}
	})
}
