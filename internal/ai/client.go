package ai

import (
	"context"
	"encoding/json"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"log/slog"
	"strings"
)

var (
	ErrMissingAPIKey   = errors.NewSentinel("AI provider API key not configured")
	ErrUnknownProvider = errors.NewSentinel("unknown AI provider")
)

// Provider selects the hosted model family used for case analysis.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Request is one outbound analysis call.
type Request struct {
	// Prompt is the natural-language instruction embedding the case details.
	Prompt string
	// Image is the optional reference photo, already base64 encoded.
	Image *models.ReferenceImage
}

// Reply is the raw answer of the provider before normalization.
type Reply struct {
	// Text is the free-form model output that may contain a fenced JSON block.
	Text string
	// Grounding is the provider's citation metadata as raw JSON, or nil when the provider has none.
	Grounding json.RawMessage
}

// Generator performs the outbound AI call. Implementations must not retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (Reply, error)
}

// Config is the collaborator configuration for the AI provider. It is created once at startup.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint, e.g. for a proxy or a test server.
	BaseURL string
}

// NewGenerator creates the Generator for cfg.Provider.
func NewGenerator(ctx context.Context, cfg Config, logger *slog.Logger) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(ErrMissingAPIKey, "create generator", slog.String("provider", string(cfg.Provider)))
	}

	switch Provider(strings.ToLower(string(cfg.Provider))) {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg, logger)
	case ProviderOpenAI:
		return NewOpenAI(cfg, logger), nil
	default:
		return nil, errors.Wrap(ErrUnknownProvider, "create generator", slog.String("provider", string(cfg.Provider)))
	}
}
