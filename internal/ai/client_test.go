package ai_test

import (
	"context"
	"encoding/json"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)
	tests := []struct {
		name    string
		cfg     ai.Config
		wantErr error
	}{
		{name: "missing key", cfg: ai.Config{Provider: ai.ProviderGemini}, wantErr: ai.ErrMissingAPIKey},
		{name: "unknown provider", cfg: ai.Config{Provider: "watson", APIKey: "key"}, wantErr: ai.ErrUnknownProvider},
		{name: "gemini", cfg: ai.Config{Provider: ai.ProviderGemini, APIKey: "key"}},
		{name: "default provider", cfg: ai.Config{APIKey: "key"}},
		{name: "openai", cfg: ai.Config{Provider: "OpenAI", APIKey: "key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, err := ai.NewGenerator(context.Background(), tt.cfg, logger)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, generator)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, generator)
		})
	}
}

func TestGemini_Generate(t *testing.T) {
	fake := testhelpers.NewFakeGemini(t, "```json\n{\"potentialMatches\":[]}\n```")
	fake.SetGrounding(map[string]any{
		"groundingChunks": []any{
			map[string]any{"web": map[string]any{"uri": "https://maps.example/1", "title": "Penn Station"}},
		},
	})
	generator, err := ai.NewGemini(context.Background(), ai.Config{
		APIKey:  "test-key",
		BaseURL: fake.URL(),
	}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)

	reply, err := generator.Generate(context.Background(), ai.Request{
		Prompt: "Name: Jane Doe",
		Image:  &models.ReferenceImage{MIMEType: "image/png", Data: "iVBORw0KGgo="},
	})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "potentialMatches")

	var grounding struct {
		GroundingChunks []struct {
			Web struct {
				URI   string `json:"uri"`
				Title string `json:"title"`
			} `json:"web"`
		} `json:"groundingChunks"`
	}
	require.NoError(t, json.Unmarshal(reply.Grounding, &grounding))
	require.Len(t, grounding.GroundingChunks, 1)
	require.Equal(t, "https://maps.example/1", grounding.GroundingChunks[0].Web.URI)

	requests := fake.Requests()
	require.Len(t, requests, 1)
	raw, err := json.Marshal(requests[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), "Name: Jane Doe")
	require.Contains(t, string(raw), "iVBORw0KGgo=", "image must be sent base64 encoded")
	require.Contains(t, string(raw), "googleMaps", "maps tool must be enabled")
}

func TestGemini_GenerateUpstreamFailure(t *testing.T) {
	fake := testhelpers.NewFakeGemini(t, "")
	fake.FailWith(http.StatusServiceUnavailable)
	generator, err := ai.NewGemini(context.Background(), ai.Config{
		APIKey:  "test-key",
		BaseURL: fake.URL(),
	}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)

	_, err = generator.Generate(context.Background(), ai.Request{Prompt: "Name: Jane Doe"})
	require.Error(t, err)
}

func TestGemini_GenerateBlockedPrompt(t *testing.T) {
	fake := testhelpers.NewFakeGemini(t, "unused")
	fake.BlockPrompt("SAFETY")
	generator, err := ai.NewGemini(context.Background(), ai.Config{
		APIKey:  "test-key",
		BaseURL: fake.URL(),
	}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)

	reply, err := generator.Generate(context.Background(), ai.Request{Prompt: "Name: Jane Doe"})
	require.NoError(t, err, "a reply without candidates is not an upstream failure")
	require.Empty(t, reply.Text)
	require.Nil(t, reply.Grounding)
}

func TestOpenAI_Generate(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "no json here"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	t.Cleanup(server.Close)

	generator := ai.NewOpenAI(ai.Config{APIKey: "test-key", BaseURL: server.URL + "/v1"},
		testhelpers.NewLogger(io.Discard))
	reply, err := generator.Generate(context.Background(), ai.Request{
		Prompt: "Name: Jane Doe",
		Image:  &models.ReferenceImage{MIMEType: "image/jpeg", Data: "/9j/4AAQ"},
	})
	require.NoError(t, err)
	require.Equal(t, "no json here", reply.Text)
	require.Nil(t, reply.Grounding)

	raw, err := json.Marshal(received)
	require.NoError(t, err)
	require.Contains(t, string(raw), "data:image/jpeg;base64,/9j/4AAQ")
	require.Contains(t, string(raw), "Name: Jane Doe")
}

func TestOpenAI_GenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "model": "gpt-4o", "choices": []}`))
	}))
	t.Cleanup(server.Close)

	generator := ai.NewOpenAI(ai.Config{APIKey: "test-key", BaseURL: server.URL + "/v1"},
		testhelpers.NewLogger(io.Discard))
	reply, err := generator.Generate(context.Background(), ai.Request{Prompt: "Name: Jane Doe"})
	require.NoError(t, err)
	require.Equal(t, ai.Reply{}, reply)
}
