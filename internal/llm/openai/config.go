package openai

import (
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config for the OpenAI-backed extractor. Enabled is explicit: the pipeline
// must work with the stage switched off, and "no API key in the environment"
// is a configuration decision made upstream, not something this package
// sniffs out on its own.
type Config struct {
	Enabled       bool
	APIKey        string
	BaseURL       string        // optional override (tests, proxies)
	Model         string        // e.g. "gpt-4o-mini"
	Temperature   float64       // 0..2; 0 for reproducible extraction
	Timeout       time.Duration // http client timeout
	MaxInputChars int           // OCR text is truncated to this before prompting
	MaxRetries    int           // SDK transport retries
	HTTPClient    *http.Client  // optional (tests)
}

type Client struct {
	cfg    Config
	client openai.Client
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 20000
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		log:    logger,
	}
}
