// Package extract orchestrates per-document text extraction: every page is
// classified, scanned pages are OCR'd, and ambiguous pages are verified with
// a cheap AI probe before their digital text layer is trusted or replaced.
package extract

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/legalease/docanchor/internal/classify"
	"github.com/legalease/docanchor/internal/config"
	"github.com/legalease/docanchor/internal/ocrgeom"
	"github.com/legalease/docanchor/internal/providers"
)

// PageInput is one page as delivered by the upstream format parser: its
// native text layer, its layout, and image references for OCR and probing.
type PageInput struct {
	Text   string
	Layout classify.PageLayout

	// Image is a full-resolution page render (data URI or URL), empty when
	// the page cannot be rasterized.
	Image string

	// Thumb is a low-resolution render for the AI probe. Falls back to
	// Image when empty.
	Thumb string
}

// Page is one extracted page.
type Page struct {
	Text  string         `json:"text" yaml:"text"`
	Class classify.Class `json:"class" yaml:"class"`

	// OCRed is true when the text came from the OCR engine rather than the
	// native text layer.
	OCRed bool `json:"ocred" yaml:"ocred"`
}

// Result is the extraction output for one document.
type Result struct {
	DocID string `json:"doc_id" yaml:"doc_id"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// Pipeline runs the classification/probe/OCR decision flow over a document.
type Pipeline struct {
	geom   *ocrgeom.Builder
	probe  providers.PageProbe
	cfg    config.ExtractCfg
	heur   config.Heuristics
	logger *slog.Logger
}

// NewPipeline creates a pipeline. The geometry builder supplies image
// loading and the OCR engine; the probe may be nil, in which case ambiguous
// pages keep their digital text.
func NewPipeline(geom *ocrgeom.Builder, probe providers.PageProbe, cfg config.ExtractCfg, heur config.Heuristics, logger *slog.Logger) *Pipeline {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		geom:   geom,
		probe:  probe,
		cfg:    cfg,
		heur:   heur,
		logger: logger,
	}
}

// Run extracts a document. A page-level OCR or probe failure degrades that
// page only; the document always comes back with one entry per input page.
func (p *Pipeline) Run(ctx context.Context, docID string, inputs []PageInput) (*Result, error) {
	if docID == "" {
		docID = uuid.NewString()
	}

	result := &Result{
		DocID: docID,
		Pages: make([]Page, len(inputs)),
	}
	if len(inputs) == 0 {
		return result, nil
	}

	allSparse := true
	anyFullImage := false
	for i, in := range inputs {
		result.Pages[i] = Page{
			Text:  in.Text,
			Class: classify.Classify(in.Layout, p.heur, p.cfg.ForceOCR),
		}
		if len(in.Text) > p.heur.MinCharsPerPage {
			allSparse = false
		}
		if in.Layout.HasNearFullImage(p.heur) {
			anyFullImage = true
		}
	}

	// A near-full-page raster anywhere, or no page with a plausible text
	// layer, means the whole document is a scan: OCR every page.
	if p.cfg.ForceOCR || anyFullImage || allSparse {
		p.logger.Info("document treated as scanned, running full OCR",
			"doc_id", docID, "pages", len(inputs), "forced", p.cfg.ForceOCR)
		p.ocrPages(ctx, docID, inputs, result, allIndices(len(inputs)))
		return result, nil
	}

	// Digital path: probe ambiguous pages before trusting their text layer.
	needOCR := p.probeAmbiguous(ctx, docID, inputs, result)
	if len(needOCR) > 0 {
		p.logger.Info("probe flagged pages for OCR",
			"doc_id", docID, "pages", needOCR)
		p.ocrPages(ctx, docID, inputs, result, needOCR)
	}
	return result, nil
}

// probeAmbiguous runs the AI probe over every ambiguous page concurrently
// and returns the indices whose probe output clears the adoption bar. Probe
// failures keep the page digital.
func (p *Pipeline) probeAmbiguous(ctx context.Context, docID string, inputs []PageInput, result *Result) []int {
	if p.probe == nil {
		return nil
	}

	var ambiguous []int
	for i := range inputs {
		if result.Pages[i].Class == classify.ClassAmbiguous && p.thumbRef(inputs[i]) != "" {
			ambiguous = append(ambiguous, i)
		}
	}
	if len(ambiguous) == 0 {
		return nil
	}

	flagged := make([]bool, len(inputs))
	sem := make(chan struct{}, p.cfg.MaxWorkers)
	var wg sync.WaitGroup
	for _, idx := range ambiguous {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			thumb, err := p.geom.LoadImage(ctx, p.thumbRef(inputs[i]))
			if err != nil {
				p.logger.Warn("thumbnail load failed, keeping digital text",
					"doc_id", docID, "page", i, "error", err)
				return
			}
			text, err := p.probe.DetectText(ctx, thumb)
			if err != nil {
				p.logger.Warn("page probe failed, keeping digital text",
					"doc_id", docID, "page", i, "error", err)
				return
			}
			flags := classify.Signals(inputs[i].Layout, p.heur)
			if classify.ShouldAdoptOCR(flags, len(text), p.heur) {
				flagged[i] = true
			}
		}(idx)
	}
	wg.Wait()

	var out []int
	for i, f := range flagged {
		if f {
			out = append(out, i)
		}
	}
	return out
}

// ocrPages OCRs the given pages concurrently, replacing each page's text
// with the engine output and seeding the geometry cache. A failed or empty
// OCR result leaves the page's existing text in place.
func (p *Pipeline) ocrPages(ctx context.Context, docID string, inputs []PageInput, result *Result, indices []int) {
	sem := make(chan struct{}, p.cfg.MaxWorkers)
	var wg sync.WaitGroup
	for _, idx := range indices {
		if inputs[idx].Image == "" {
			continue
		}
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			res, err := p.geom.Recognize(ctx, inputs[i].Image)
			if err != nil {
				p.logger.Warn("page OCR failed, keeping existing text",
					"doc_id", docID, "page", i, "error", err)
				return
			}
			if res.Text == "" {
				return
			}
			result.Pages[i].Text = res.Text
			result.Pages[i].OCRed = true
			p.geom.Seed(docID, i, res)
		}(idx)
	}
	wg.Wait()
}

// Prewarm eagerly builds geometry cache entries for the first few
// image-backed pages so the first highlight click does not pay OCR latency.
// Errors are logged and ignored.
func (p *Pipeline) Prewarm(ctx context.Context, docID string, images []string) {
	limit := p.cfg.PrewarmPages
	if limit <= 0 {
		return
	}

	sem := make(chan struct{}, p.cfg.MaxWorkers)
	var wg sync.WaitGroup
	warmed := 0
	for i, image := range images {
		if image == "" {
			continue
		}
		if warmed >= limit {
			break
		}
		warmed++
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(page int, img string) {
			defer wg.Done()
			defer func() { <-sem }() // release

			if _, err := p.geom.GetOrBuild(ctx, docID, page, img); err != nil {
				p.logger.Debug("prewarm skipped page",
					"doc_id", docID, "page", page, "error", err)
			}
		}(i, image)
	}
	wg.Wait()
}

func (p *Pipeline) thumbRef(in PageInput) string {
	if in.Thumb != "" {
		return in.Thumb
	}
	return in.Image
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
