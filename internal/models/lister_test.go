package models

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewLister("")

	err := lister.ListAvailableModels(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Error should name the key, got: %v", err)
	}
}

func TestListAvailableModels_FakeServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model"},
			{"id":"tts-1","object":"model"},
			{"id":"dall-e-3","object":"model"},
			{"id":"gpt-4o","object":"model"},
			{"id":"text-embedding-3-small","object":"model"}
		]}`)
	}))
	defer server.Close()

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	lister := NewListerWithConfig("test-key", config)

	var out bytes.Buffer
	lister.SetOutput(&out)

	if err := lister.ListAvailableModels(context.Background()); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "  gpt-4o\n  gpt-4o-mini\n") {
		t.Errorf("Expected sorted chat models, got:\n%s", got)
	}
	for _, skipped := range []string{"tts-1", "dall-e-3", "embedding"} {
		if strings.Contains(got, skipped) {
			t.Errorf("Listing should not contain %s:\n%s", skipped, got)
		}
	}
}

func TestIsChatModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o-mini":            true,
		"o3-mini":                true,
		"gpt-4o-mini-tts":        false,
		"gpt-4o-realtime":        false,
		"whisper-1":              false,
		"text-embedding-3-large": false,
		"babbage-002":            false,
	}
	for id, want := range tests {
		if got := isChatModel(id); got != want {
			t.Errorf("isChatModel(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" && geminiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY and GEMINI_API_KEY not set")
	}

	lister := NewLister(apiKey)
	if err := lister.EnableGemini(context.Background(), geminiKey); err != nil {
		t.Fatalf("EnableGemini failed: %v", err)
	}

	var out bytes.Buffer
	lister.SetOutput(&out)
	if err := lister.ListAvailableModels(context.Background()); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
	t.Log(out.String())
}
