// Package config reads the application configuration from the environment.
package config

import (
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/envstruct"
	"github.com/myrjola/sentinels/internal/errors"
	"log/slog"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

type Config struct {
	// Addr is the TCP address the web server listens on. Use port 0 to pick a free port.
	Addr string `env:"SENTINELS_ADDR" envDefault:"localhost:4000"`
	// PprofPort enables the pprof server on localhost when set.
	PprofPort string `env:"SENTINELS_PPROF_PORT" envDefault:""`

	AIProvider   string `env:"SENTINELS_AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel  string `env:"SENTINELS_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel  string `env:"SENTINELS_OPENAI_MODEL" envDefault:"gpt-4o"`
	AIBaseURL    string `env:"SENTINELS_AI_BASE_URL" envDefault:""`

	AnalysisTimeout time.Duration `env:"SENTINELS_ANALYSIS_TIMEOUT" envDefault:"90s"`
	SessionLifetime time.Duration `env:"SENTINELS_SESSION_LIFETIME" envDefault:"12h"`
	MaxUploadBytes  int64         `env:"SENTINELS_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// Load populates Config using lookupEnv, which has the same signature as [os.LookupEnv].
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	if cfg.AnalysisTimeout <= 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "analysis timeout must be positive",
			slog.Duration("timeout", cfg.AnalysisTimeout))
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "max upload bytes must be positive",
			slog.Int64("maxUploadBytes", cfg.MaxUploadBytes))
	}
	return cfg, nil
}

// AI returns the configuration of the selected AI provider.
func (c Config) AI() ai.Config {
	provider := ai.Provider(strings.ToLower(strings.TrimSpace(c.AIProvider)))
	cfg := ai.Config{
		Provider: provider,
		BaseURL:  c.AIBaseURL,
	}
	switch provider {
	case ai.ProviderOpenAI:
		cfg.APIKey = c.OpenAIAPIKey
		cfg.Model = c.OpenAIModel
	default:
		cfg.APIKey = c.GeminiAPIKey
		cfg.Model = c.GeminiModel
	}
	return cfg
}
