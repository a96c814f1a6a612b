package ocrgeom

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/legalease/docanchor/internal/normtext"
	"github.com/legalease/docanchor/internal/providers"
)

const fetchTimeout = 5 * time.Second

// Builder constructs cache entries on demand. One builder is shared across
// requests; the store it writes to is the only cross-request state.
type Builder struct {
	ocr     providers.OCRProvider
	store   Store
	limiter *providers.RateLimiter
	client  *http.Client
	logger  *slog.Logger
}

// NewBuilder creates a builder around an OCR provider and a store.
func NewBuilder(ocr providers.OCRProvider, store Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		ocr:     ocr,
		store:   store,
		limiter: providers.NewRateLimiter(ocr.RequestsPerSecond()),
		client:  &http.Client{Timeout: fetchTimeout},
		logger:  logger,
	}
}

// GetOrBuild returns the cached entry for (docID, page), building it from
// the page image on a miss. The image is either a data URI or a fetchable
// URL. Any decode or OCR failure returns an error; the caller degrades to a
// text-only anchor for that page.
func (b *Builder) GetOrBuild(ctx context.Context, docID string, page int, image string) (*Entry, error) {
	key := Key{DocID: docID, Page: page}
	if entry, ok := b.store.Get(key); ok {
		return entry, nil
	}

	result, err := b.Recognize(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("OCR failed for page %d: %w", page, err)
	}

	entry := BuildEntry(result)
	b.store.Put(key, entry)

	b.logger.Debug("built OCR geometry entry",
		"doc_id", docID,
		"page", page,
		"tokens", len(entry.Tokens),
		"provider", result.Provider)

	return entry, nil
}

// Recognize loads a page image reference and runs it through the OCR
// provider. The extraction pipeline uses this directly when it needs the raw
// OCR result rather than a geometry entry.
func (b *Builder) Recognize(ctx context.Context, image string) (*providers.OCRResult, error) {
	data, err := b.LoadImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to load page image: %w", err)
	}
	return b.recognizeBytes(ctx, data)
}

// Seed builds a geometry entry from an OCR result already in hand and
// stores it, so extraction-time OCR warms the anchor cache without a second
// engine call.
func (b *Builder) Seed(docID string, page int, result *providers.OCRResult) *Entry {
	entry := BuildEntry(result)
	b.store.Put(Key{DocID: docID, Page: page}, entry)
	return entry
}

// recognizeBytes runs the OCR provider with rate limiting and retries.
func (b *Builder) recognizeBytes(ctx context.Context, image []byte) (*providers.OCRResult, error) {
	var result *providers.OCRResult
	err := retry.Do(
		func() error {
			if err := b.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			r, err := b.ocr.Recognize(ctx, image)
			if err != nil {
				return err
			}
			result = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(b.ocr.MaxRetries())),
		retry.Delay(b.ocr.RetryDelayBase()),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LoadImage resolves a page image reference to raw bytes. Data URIs are
// decoded inline; anything else is fetched over HTTP.
func (b *Builder) LoadImage(ctx context.Context, image string) ([]byte, error) {
	if strings.HasPrefix(image, "data:") {
		idx := strings.Index(image, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		data, err := base64.StdEncoding.DecodeString(image[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URI: %w", err)
		}
		return data, nil
	}

	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", image, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := b.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("image fetch returned status %d", resp.StatusCode)
			}
			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// BuildEntry turns one OCR result into a cache entry. Exported so the
// extraction pipeline can build entries from OCR results it already has,
// without a second engine call.
func BuildEntry(result *providers.OCRResult) *Entry {
	raw := result.Text
	tokens := make([]TokenBox, 0, len(result.Words))

	if result.HasOffsets {
		for _, w := range result.Words {
			if w.Start < 0 || w.End <= w.Start {
				continue
			}
			tokens = append(tokens, TokenBox{
				Start: w.Start,
				End:   w.End,
				Box:   normalizeBox(w.Box, result),
			})
		}
	} else {
		// Word fragments without offsets: rebuild the aggregate by joining
		// with single spaces and track each word's span as it is appended.
		var sb strings.Builder
		for _, w := range result.Words {
			if w.Text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			start := sb.Len()
			sb.WriteString(w.Text)
			tokens = append(tokens, TokenBox{
				Start: start,
				End:   sb.Len(),
				Box:   normalizeBox(w.Box, result),
			})
		}
		raw = sb.String()
	}

	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })

	norm := normtext.Normalize(raw)
	return &Entry{
		Text:       norm.Text,
		Map:        norm.Map,
		Tokens:     tokens,
		PageWidth:  result.PageWidth,
		PageHeight: result.PageHeight,
	}
}

// normalizeBox converts a box to page-fraction coordinates.
func normalizeBox(q providers.Quad, result *providers.OCRResult) providers.Quad {
	if result.NormalizedBoxes {
		return q
	}
	w, h := result.PageWidth, result.PageHeight
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return providers.Quad{
		X0: q.X0 / w,
		Y0: q.Y0 / h,
		X1: q.X1 / w,
		Y1: q.Y1 / h,
	}
}
