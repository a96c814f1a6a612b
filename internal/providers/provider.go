// Package providers defines the external OCR and page-probe collaborators
// and their concrete clients. OCR is kept separate from the probe because it
// has different rate limiting, retry patterns, and result handling (word
// geometry vs a bare text sample).
package providers

import (
	"context"
	"time"
)

// Quad is an axis-aligned bounding box. Coordinates are either absolute
// pixels or page fractions depending on OCRResult.NormalizedBoxes.
type Quad struct {
	X0, Y0, X1, Y1 float64
}

// Word is a recognized token with its geometry. Start/End are byte offsets
// into the aggregated OCRResult.Text when the engine supplies them; both are
// -1 when the engine returns only word fragments without offsets.
type Word struct {
	Text  string
	Start int
	End   int
	Box   Quad
}

// OCRResult is the complete response from recognizing one page image.
type OCRResult struct {
	// Aggregated full text of the page.
	Text string

	// Word-level records, in reading order.
	Words []Word

	// Page dimensions in pixels as reported by the engine.
	PageWidth  float64
	PageHeight float64

	// NormalizedBoxes is true when Word boxes are already page fractions.
	NormalizedBoxes bool

	// HasOffsets is true when Words carry offsets into Text.
	HasOffsets bool

	// Provider info and timing.
	Provider      string
	ExecutionTime time.Duration
}

// OCRProvider recognizes a single page image into text plus word geometry.
// A call may fail; callers must degrade per page, never abort a batch.
type OCRProvider interface {
	// Name returns the provider identifier (e.g., "vision-http").
	Name() string

	// Recognize extracts text and word boxes from one page image.
	Recognize(ctx context.Context, image []byte) (*OCRResult, error)

	// Rate limiting properties
	RequestsPerSecond() float64
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// PageProbe runs cheap text detection on a low-resolution page thumbnail.
// Its output is only used to decide whether full OCR is necessary, never as
// final extracted text.
type PageProbe interface {
	// Name returns the probe identifier (e.g., "openai").
	Name() string

	// DetectText returns whatever text the probe can read off the thumbnail.
	DetectText(ctx context.Context, thumbnail []byte) (string, error)
}
