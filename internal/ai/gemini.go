package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"github.com/myrjola/sentinels/internal/errors"
	"google.golang.org/genai"
	"log/slog"
	"time"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini generates case analyses with the Gemini API. Google Maps grounding is enabled so that search leads
// refer to real places.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "new genai client")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logger.With(slog.String("source", "Gemini"), slog.String("model", model)),
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Reply, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		data, err := base64.StdEncoding.DecodeString(req.Image.Data)
		if err != nil {
			return Reply{}, errors.Wrap(err, "decode reference image", slog.String("mime_type", req.Image.MIMEType))
		}
		parts = append(parts, genai.NewPartFromBytes(data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	// ResponseMIMEType is left unset because JSON mode cannot be combined with the Google Maps tool.
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Reply{}, errors.Wrap(err, "generate content", slog.String("model", g.model))
	}
	if len(resp.Candidates) == 0 {
		// A blocked prompt answers with prompt feedback only. The normalizer turns the empty reply into defaults.
		attrs := []slog.Attr{slog.Duration("duration", time.Since(start))}
		if resp.PromptFeedback != nil {
			attrs = append(attrs, slog.String("block_reason", string(resp.PromptFeedback.BlockReason)))
		}
		g.logger.LogAttrs(ctx, slog.LevelWarn, "no candidates in reply", attrs...)
		return Reply{}, nil
	}

	reply := Reply{Text: resp.Text()}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		if reply.Grounding, err = json.Marshal(gm); err != nil {
			// The citations are optional, the analysis text is still usable.
			g.logger.LogAttrs(ctx, slog.LevelWarn, "could not encode grounding metadata", errors.SlogError(err))
			reply.Grounding = nil
		}
	}

	g.logger.LogAttrs(ctx, slog.LevelDebug, "generated content",
		slog.Duration("duration", time.Since(start)),
		slog.Int("text_length", len(reply.Text)),
		slog.Bool("image", req.Image != nil),
		slog.Int("grounding_bytes", len(reply.Grounding)),
	)
	return reply, nil
}
