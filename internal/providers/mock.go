package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockOCRName = "mock"

// MockOCR is an OCRProvider for testing.
type MockOCR struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)
	Result     *OCRResult

	// Rate limiting
	RPS        float64
	Retries    int
	RetryDelay time.Duration

	// State
	requestCount atomic.Int64
}

// NewMockOCR creates a mock OCR provider with sensible defaults.
func NewMockOCR() *MockOCR {
	return &MockOCR{
		Latency: time.Millisecond,
		Result: &OCRResult{
			Text:       "mock page text",
			PageWidth:  1000,
			PageHeight: 1400,
			Provider:   MockOCRName,
		},
		RPS:        100,
		Retries:    3,
		RetryDelay: time.Second,
	}
}

// Name returns the provider identifier.
func (m *MockOCR) Name() string { return MockOCRName }

// RequestsPerSecond returns the configured rate limit.
func (m *MockOCR) RequestsPerSecond() float64 { return m.RPS }

// MaxRetries returns the maximum retry attempts.
func (m *MockOCR) MaxRetries() int { return m.Retries }

// RetryDelayBase returns the base delay between retries.
func (m *MockOCR) RetryDelayBase() time.Duration { return m.RetryDelay }

// RequestCount returns how many Recognize calls were made.
func (m *MockOCR) RequestCount() int64 { return m.requestCount.Load() }

// Recognize returns the configured result after the configured latency.
func (m *MockOCR) Recognize(ctx context.Context, image []byte) (*OCRResult, error) {
	n := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if m.ShouldFail || (m.FailAfter > 0 && n > int64(m.FailAfter)) {
		return nil, fmt.Errorf("mock OCR failure")
	}

	out := *m.Result
	return &out, nil
}

const MockProbeName = "mock-probe"

// MockProbe is a PageProbe for testing.
type MockProbe struct {
	Text       string
	ShouldFail bool

	requestCount atomic.Int64
}

// Name returns the probe identifier.
func (m *MockProbe) Name() string { return MockProbeName }

// RequestCount returns how many DetectText calls were made.
func (m *MockProbe) RequestCount() int64 { return m.requestCount.Load() }

// DetectText returns the configured text.
func (m *MockProbe) DetectText(ctx context.Context, thumbnail []byte) (string, error) {
	m.requestCount.Add(1)
	if m.ShouldFail {
		return "", fmt.Errorf("mock probe failure")
	}
	return m.Text, nil
}
