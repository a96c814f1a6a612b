package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIProbeName         = "openai"
	openAIProbeDefaultModel = "gpt-4o-mini"

	// The probe only needs a rough transcription to compare text volumes,
	// so the prompt asks for plain text and nothing else.
	probePrompt = "Transcribe all text visible in this page image. " +
		"Output only the raw text, no commentary. If the page contains no readable text, output nothing."
)

// OpenAIProbeConfig holds configuration for the OpenAI page probe.
type OpenAIProbeConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIProbe implements PageProbe using a vision-capable chat model.
// It receives a low-resolution thumbnail and returns detected text, which is
// only ever compared against the digital layer, never displayed.
type OpenAIProbe struct {
	model  string
	client openai.Client
}

// NewOpenAIProbe creates a new page probe client.
func NewOpenAIProbe(cfg OpenAIProbeConfig) *OpenAIProbe {
	if cfg.Model == "" {
		cfg.Model = openAIProbeDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProbe{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the probe identifier.
func (p *OpenAIProbe) Name() string {
	return OpenAIProbeName
}

// DetectText asks the vision model to transcribe the thumbnail.
func (p *OpenAIProbe) DetectText(ctx context.Context, thumbnail []byte) (string, error) {
	if len(thumbnail) == 0 {
		return "", fmt.Errorf("empty thumbnail")
	}

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(thumbnail)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(probePrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURI,
		}),
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", fmt.Errorf("probe request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("probe returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
