package models

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Lister handles listing available chat models
type Lister struct {
	apiKey string
	client *openai.Client
	gemini *genai.Client
	out    io.Writer
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return NewListerWithConfig(apiKey, openai.DefaultConfig(apiKey))
}

// NewListerWithConfig creates a lister with a custom OpenAI client configuration
func NewListerWithConfig(apiKey string, config openai.ClientConfig) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
		out:    os.Stdout,
	}
}

// SetOutput redirects the listing
func (l *Lister) SetOutput(w io.Writer) {
	l.out = w
}

// EnableGemini adds the Gemini models to the listing
func (l *Lister) EnableGemini(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	l.gemini = client
	return nil
}

// ListAvailableModels prints the chat models of every configured provider
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.apiKey == "" && l.gemini == nil {
		return fmt.Errorf("no API key found. Set OPENAI_API_KEY or GEMINI_API_KEY environment variable or configure in .lexicard.yaml")
	}

	if l.apiKey != "" {
		chatModels, err := l.openAIChatModels(ctx)
		if err != nil {
			return err
		}
		printModels(l.out, "OpenAI chat models (--openai-model):", chatModels)
	}

	if l.gemini != nil {
		geminiModels, err := l.geminiModels(ctx)
		if err != nil {
			return err
		}
		printModels(l.out, "Gemini models (--gemini-model):", geminiModels)
	}

	return nil
}

func (l *Lister) openAIChatModels(ctx context.Context) ([]string, error) {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	chatModels := []string{}
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)
	return chatModels, nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	names := []string{}
	for model, err := range l.gemini.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list Gemini models: %w", err)
		}
		name := strings.TrimPrefix(model.Name, "models/")
		if strings.HasPrefix(name, "gemini") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// isChatModel filters out speech, image, embedding and moderation models
func isChatModel(id string) bool {
	for _, skip := range []string{"tts", "audio", "dall-e", "embedding", "whisper", "moderation", "transcribe", "image", "realtime"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return strings.HasPrefix(id, "gpt") || strings.HasPrefix(id, "o1") ||
		strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4") || strings.Contains(id, "chat")
}

func printModels(w io.Writer, title string, models []string) {
	fmt.Fprintln(w, title)
	if len(models) == 0 {
		fmt.Fprintln(w, "  No models found")
	}
	for _, model := range models {
		fmt.Fprintf(w, "  %s\n", model)
	}
	fmt.Fprintln(w)
}
