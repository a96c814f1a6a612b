package config

// Config holds docanchor configuration.
// Loaded from ./config.yaml or ~/.docanchor/config.yaml.
type Config struct {
	OCRProviders map[string]OCRProviderCfg `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	Probe        ProbeCfg                  `mapstructure:"probe" yaml:"probe"`
	Extract      ExtractCfg                `mapstructure:"extract" yaml:"extract"`
	Heuristics   Heuristics                `mapstructure:"heuristics" yaml:"heuristics"`
}

// OCRProviderCfg configures an OCR provider.
type OCRProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "vision-http", "mock"
	BaseURL   string  `mapstructure:"base_url" yaml:"base_url"`     // Endpoint override
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// ProbeCfg configures the AI page probe used on ambiguous pages.
type ProbeCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`       // "openai", "mock"
	Model   string `mapstructure:"model" yaml:"model"`     // Vision-capable chat model
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// ExtractCfg controls the extraction pipeline.
type ExtractCfg struct {
	// ForceOCR treats every page as scanned regardless of content.
	// Diagnostic escape hatch; also reachable via DOCANCHOR_EXTRACT_FORCE_OCR.
	ForceOCR bool `mapstructure:"force_ocr" yaml:"force_ocr"`
	// MaxWorkers bounds concurrent per-page OCR/probe calls.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
	// PrewarmPages is how many scanned pages get their geometry cache built
	// eagerly after extraction (reduces first-click highlight latency).
	PrewarmPages int `mapstructure:"prewarm_pages" yaml:"prewarm_pages"`
}

// Heuristics holds the thresholds of the scanned-vs-digital decision and the
// anchor geometry policy. These are empirically tuned values; changing any of
// them changes classification behavior, not just presentation.
type Heuristics struct {
	// MinCharsPerPage: a text layer at or below this length is treated as
	// absent when deciding whether a page is scanned.
	MinCharsPerPage int `mapstructure:"min_chars_per_page" yaml:"min_chars_per_page"`

	// FullPageImageRatio: a single image block covering at least this
	// fraction of page area marks the page as a near-full-page raster.
	FullPageImageRatio float64 `mapstructure:"full_page_image_ratio" yaml:"full_page_image_ratio"`

	// FullPageImagePixelRatio: fallback coverage threshold comparing an
	// embedded image's intrinsic pixel area against the page's pixel area at
	// one of the candidate scan resolutions.
	FullPageImagePixelRatio float64 `mapstructure:"full_page_image_pixel_ratio" yaml:"full_page_image_pixel_ratio"`

	// CandidateDPIs are the scan resolutions assumed when estimating page
	// pixel area for the fallback coverage check.
	CandidateDPIs []float64 `mapstructure:"candidate_dpis" yaml:"candidate_dpis"`

	// Ambiguity signals for pages that look digital at first glance.
	AmbiguousImageAreaRatio float64 `mapstructure:"ambiguous_image_area_ratio" yaml:"ambiguous_image_area_ratio"`
	AmbiguousImageSpanRatio float64 `mapstructure:"ambiguous_image_span_ratio" yaml:"ambiguous_image_span_ratio"`
	AmbiguousNonAlnumRatio  float64 `mapstructure:"ambiguous_non_alnum_ratio" yaml:"ambiguous_non_alnum_ratio"`
	AmbiguousTextBlocks     int     `mapstructure:"ambiguous_text_blocks" yaml:"ambiguous_text_blocks"`
	AmbiguousImageBlocks    int     `mapstructure:"ambiguous_image_blocks" yaml:"ambiguous_image_blocks"`

	// Probe adoption margins: the probe's text must beat the digital layer
	// by GrowthFactor and at least GrowthChars characters, or beat a
	// fragmented page by FragmentedMargin characters, before OCR output
	// replaces the digital text for that page.
	ProbeGrowthFactor     float64 `mapstructure:"probe_growth_factor" yaml:"probe_growth_factor"`
	ProbeGrowthChars      int     `mapstructure:"probe_growth_chars" yaml:"probe_growth_chars"`
	ProbeFragmentedMargin int     `mapstructure:"probe_fragmented_margin" yaml:"probe_fragmented_margin"`

	// BoxPadding is added around a union bounding box, in page-fraction
	// units, clamped to [0,1].
	BoxPadding float64 `mapstructure:"box_padding" yaml:"box_padding"`

	// BatchAnchorCap bounds how many anchors one batch request may produce.
	BatchAnchorCap int `mapstructure:"batch_anchor_cap" yaml:"batch_anchor_cap"`
}
