package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	VisionHTTPName    = "vision-http"
	VisionHTTPBaseURL = "https://vision.googleapis.com/v1"
)

// VisionHTTPConfig holds configuration for the document-text-detection
// OCR client.
type VisionHTTPConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64      // Requests per second (default: 6.0)
	HTTPClient *http.Client // Optional (tests)
}

// VisionHTTPClient implements OCRProvider against a REST document-text
// endpoint that returns full text plus per-word bounding boxes in absolute
// pixel coordinates.
type VisionHTTPClient struct {
	apiKey    string
	baseURL   string
	rateLimit float64
	client    *http.Client
}

// NewVisionHTTPClient creates a new OCR client.
func NewVisionHTTPClient(cfg VisionHTTPConfig) *VisionHTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = VisionHTTPBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 6.0
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &VisionHTTPClient{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		rateLimit: cfg.RateLimit,
		client:    client,
	}
}

// Name returns the provider identifier.
func (c *VisionHTTPClient) Name() string {
	return VisionHTTPName
}

// RequestsPerSecond returns the rate limit.
func (c *VisionHTTPClient) RequestsPerSecond() float64 {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *VisionHTTPClient) MaxRetries() int {
	return 3
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *VisionHTTPClient) RetryDelayBase() time.Duration {
	return 2 * time.Second
}

// Recognize runs document text detection on a single page image.
func (c *VisionHTTPClient) Recognize(ctx context.Context, image []byte) (*OCRResult, error) {
	start := time.Now()

	reqBody := visionAnnotateRequest{
		Requests: []visionImageRequest{{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []visionFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}

	resp, err := c.doRequest(ctx, "/images:annotate", reqBody)
	if err != nil {
		return nil, err
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("empty annotation response")
	}
	annotation := resp.Responses[0]
	if annotation.Error != nil && annotation.Error.Message != "" {
		return nil, fmt.Errorf("annotation error: %s", annotation.Error.Message)
	}
	fta := annotation.FullTextAnnotation
	if fta == nil || len(fta.Pages) == 0 {
		return nil, fmt.Errorf("no pages in annotation")
	}
	page := fta.Pages[0]

	width := float64(page.Width)
	height := float64(page.Height)
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	// The word list carries no character offsets into the page text; words
	// are emitted in reading order and the caller reconstructs offsets.
	var words []Word
	for _, block := range page.Blocks {
		for _, para := range block.Paragraphs {
			for _, w := range para.Words {
				var text bytes.Buffer
				for _, s := range w.Symbols {
					text.WriteString(s.Text)
				}
				words = append(words, Word{
					Text:  text.String(),
					Start: -1,
					End:   -1,
					Box:   boundingQuad(w.BoundingBox.Vertices),
				})
			}
		}
	}

	return &OCRResult{
		Text:          fta.Text,
		Words:         words,
		PageWidth:     width,
		PageHeight:    height,
		Provider:      VisionHTTPName,
		ExecutionTime: time.Since(start),
	}, nil
}

// boundingQuad reduces a vertex polygon to its axis-aligned bounding box.
func boundingQuad(vertices []visionVertex) Quad {
	if len(vertices) == 0 {
		return Quad{}
	}
	q := Quad{
		X0: float64(vertices[0].X), Y0: float64(vertices[0].Y),
		X1: float64(vertices[0].X), Y1: float64(vertices[0].Y),
	}
	for _, v := range vertices[1:] {
		x, y := float64(v.X), float64(v.Y)
		if x < q.X0 {
			q.X0 = x
		}
		if y < q.Y0 {
			q.Y0 = y
		}
		if x > q.X1 {
			q.X1 = x
		}
		if y > q.Y1 {
			q.Y1 = y
		}
	}
	return q
}

// doRequest makes an HTTP request to the annotation API.
func (c *VisionHTTPClient) doRequest(ctx context.Context, path string, body any) (*visionAnnotateResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + path
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp visionErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("OCR error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("OCR error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var annotateResp visionAnnotateResponse
	if err := json.Unmarshal(respBody, &annotateResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &annotateResp, nil
}

// Wire types for the annotation API.

type visionAnnotateRequest struct {
	Requests []visionImageRequest `json:"requests"`
}

type visionImageRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionAnnotateResponse struct {
	Responses []visionAnnotation `json:"responses"`
}

type visionAnnotation struct {
	FullTextAnnotation *visionFullText    `json:"fullTextAnnotation"`
	Error              *visionStatusError `json:"error"`
}

type visionStatusError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type visionFullText struct {
	Text  string       `json:"text"`
	Pages []visionPage `json:"pages"`
}

type visionPage struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Blocks []visionBlock `json:"blocks"`
}

type visionBlock struct {
	Paragraphs []visionParagraph `json:"paragraphs"`
}

type visionParagraph struct {
	Words []visionWord `json:"words"`
}

type visionWord struct {
	Symbols     []visionSymbol `json:"symbols"`
	BoundingBox visionPoly     `json:"boundingBox"`
}

type visionSymbol struct {
	Text string `json:"text"`
}

type visionPoly struct {
	Vertices []visionVertex `json:"vertices"`
}

type visionVertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type visionErrorResponse struct {
	Error visionStatusError `json:"error"`
}
