package main

import (
	"context"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/config"
	"github.com/myrjola/sentinels/internal/e2etest"
	"github.com/myrjola/sentinels/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"testing"
)

const fullReply = "Analysis complete.\n```json\n" + `{
  "personOverview": {
    "summary": "Adult female, slim build.",
    "estimatedBiometrics": "Approx. 165cm, 55kg",
    "clothingAnalysis": "Red jacket, dark jeans",
    "distinctiveFeatures": ["Scar on left cheek"]
  },
  "potentialMatches": [
    {"id": "MATCH-001", "confidence": 45, "source": "Transit CCTV", "location": "Powell St Station", "description": "Partial match"},
    {"id": "MATCH-002", "confidence": 92, "source": "Shelter intake log", "location": "Mission District", "description": "Strong match"}
  ],
  "searchLeads": [
    {"locationName": "Powell St Station", "type": "Transport", "reason": "Nearest BART station", "address": "899 Market St"}
  ],
  "movementPrediction": {"prediction": "Likely stayed downtown.", "radiusKm": 3.5, "timeElapsedAnalysis": "Recent"}
}` + "\n```"

type testEnv struct {
	server *e2etest.Server
	gemini *testhelpers.FakeGemini
}

// startTestServer starts the web server against a fake Gemini endpoint. env overrides the default test
// configuration.
func startTestServer(t *testing.T, env map[string]string) testEnv {
	t.Helper()
	gemini := testhelpers.NewFakeGemini(t, fullReply)
	gemini.SetGrounding(map[string]any{
		"groundingChunks": []any{
			map[string]any{"web": map[string]any{"uri": "https://maps.example/powell", "title": "Powell St"}},
		},
	})

	server, err := e2etest.StartServer(t.Context(), io.Discard, testLookupEnv(env, gemini.URL()), run)
	require.NoError(t, err)
	return testEnv{server: server, gemini: gemini}
}

// startStubServer starts the web server with an in-process generator, which lets tests control when the AI
// call returns.
func startStubServer(t *testing.T, generator ai.Generator, env map[string]string) *e2etest.Server {
	t.Helper()
	runWithGenerator := func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
		cfg, err := config.Load(lookupEnv)
		if err != nil {
			return err
		}
		return serve(ctx, logger, cfg, generator)
	}

	server, err := e2etest.StartServer(t.Context(), io.Discard, testLookupEnv(env, ""), runWithGenerator)
	require.NoError(t, err)
	return server
}

func testLookupEnv(env map[string]string, geminiURL string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := env[key]; ok {
			return v, true
		}
		switch key {
		case "SENTINELS_ADDR":
			return "localhost:0", true
		case "GEMINI_API_KEY":
			return "test-key", true
		case "SENTINELS_AI_BASE_URL":
			return geminiURL, geminiURL != ""
		default:
			return "", false
		}
	}
}
