package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// ErrUnavailable is returned by providers that are not configured
var ErrUnavailable = errors.New("enrichment provider unavailable")

// Completer sends one prompt to a text-completion service
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter completes prompts with the OpenAI chat API
type OpenAICompleter struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAICompleter creates a completer for the given chat model
func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	return NewOpenAICompleterWithConfig(apiKey, model, openai.DefaultConfig(apiKey))
}

// NewOpenAICompleterWithConfig creates a completer with a custom client configuration
func NewOpenAICompleterWithConfig(apiKey, model string, config openai.ClientConfig) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

// Complete implements Completer
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found: %w", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 300,
		// A literal 0 is dropped by omitempty and the API default applies
		Temperature: math.SmallestNonzeroFloat32,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiCompleter completes prompts with the Gemini API
type GeminiCompleter struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiCompleter creates a completer for the given Gemini model
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if apiKey == "" {
		return &GeminiCompleter{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompleter{
		apiKey: apiKey,
		model:  model,
		client: client,
	}, nil
}

// Complete implements Completer
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("Gemini API key not found: %w", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return text, nil
}

// BreakerCompleter stops calling a failing service for a while
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// BreakerSettings configures the circuit breaker
type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures before opening
	OpenTimeout time.Duration // how long the breaker stays open
}

// DefaultBreakerSettings opens after 5 consecutive failures for 30s
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// NewBreakerCompleter wraps next in a circuit breaker named name
func NewBreakerCompleter(name string, next Completer, settings BreakerSettings) *BreakerCompleter {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A missing API key is a configuration problem, not an outage
			return err == nil || errors.Is(err, ErrUnavailable)
		},
	})

	return &BreakerCompleter{next: next, cb: cb}
}

// Complete implements Completer
func (b *BreakerCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// State returns the breaker state name
func (b *BreakerCompleter) State() string {
	return b.cb.State().String()
}
