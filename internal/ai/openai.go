package ai

import (
	"context"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/sashabaranov/go-openai"
	"log/slog"
)

const (
	DefaultOpenAIModel = openai.GPT4o
	MaxTokens          = 4096
)

// OpenAI generates case analyses with the OpenAI chat completions API. It has no mapping tool, so replies never
// carry grounding metadata and search leads are the model's own suggestions.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(cfg Config, logger *slog.Logger) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger.With(slog.String("source", "OpenAI"), slog.String("model", model)),
	}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Reply, error) {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: req.Prompt,
	}}
	if req.Image != nil {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    req.Image.DataURL(),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	completion, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     o.model,
			MaxTokens: MaxTokens,
			Messages: []openai.ChatCompletionMessage{{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			}},
		},
	)
	if err != nil {
		return Reply{}, errors.Wrap(err, "create chat completion", slog.String("model", o.model))
	}
	if len(completion.Choices) == 0 {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "no choices in chat completion")
		return Reply{}, nil
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "created chat completion",
		slog.Int("prompt_tokens", completion.Usage.PromptTokens),
		slog.Int("completion_tokens", completion.Usage.CompletionTokens),
	)
	return Reply{Text: completion.Choices[0].Message.Content}, nil
}
