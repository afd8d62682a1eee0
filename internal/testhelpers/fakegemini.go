package testhelpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeGemini is an httptest server speaking the generateContent wire format of the Gemini API.
type FakeGemini struct {
	Server *httptest.Server

	mu        sync.Mutex
	replyText string
	grounding any
	status    int
	blocked   string
	requests  []map[string]any
}

// NewFakeGemini starts a fake Gemini endpoint that answers every generateContent call with replyText. The server
// is closed when the test finishes.
func NewFakeGemini(t testing.TB, replyText string) *FakeGemini {
	t.Helper()
	f := &FakeGemini{replyText: replyText, status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure the Gemini client with.
func (f *FakeGemini) URL() string {
	return f.Server.URL + "/"
}

// SetReply changes the text returned by subsequent calls.
func (f *FakeGemini) SetReply(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyText = text
}

// SetGrounding sets the groundingMetadata object returned with the candidate.
func (f *FakeGemini) SetGrounding(grounding any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grounding = grounding
}

// FailWith makes subsequent calls fail with the given HTTP status.
func (f *FakeGemini) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// BlockPrompt makes subsequent calls succeed without candidates, the way the API answers a blocked prompt.
func (f *FakeGemini) BlockPrompt(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked = reason
}

// Requests returns the decoded request bodies received so far.
func (f *FakeGemini) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.requests...)
}

func (f *FakeGemini) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var decoded map[string]any
	if err = json.Unmarshal(body, &decoded); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, decoded)
	status, text, grounding, blocked := f.status, f.replyText, f.grounding, f.blocked
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": status, "message": "fake failure", "status": "UNAVAILABLE"},
		})
		return
	}

	if blocked != "" {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates":     []any{},
			"promptFeedback": map[string]any{"blockReason": blocked},
		})
		return
	}

	candidate := map[string]any{
		"content": map[string]any{
			"role":  "model",
			"parts": []map[string]any{{"text": text}},
		},
		"finishReason": "STOP",
	}
	if grounding != nil {
		candidate["groundingMetadata"] = grounding
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{candidate}})
}
