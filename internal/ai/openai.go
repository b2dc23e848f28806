package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// noAuthKey is the placeholder key local servers accept; no Authorization
// header is sent for it.
const noAuthKey = "EMPTY"

// OpenAIProvider talks to any server exposing the OpenAI-compatible
// /chat/completions endpoint (vLLM, llama.cpp, Ollama, hosted APIs).
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.httpClient = hc
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.log = log.With("component", "llm")
	}
}

// NewOpenAIProvider creates a provider for baseURL (e.g. "http://127.0.0.1:32668/v1").
func NewOpenAIProvider(baseURL, apiKey, model string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat sends messages to /chat/completions and returns the first choice.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts ChatOptions) (*Response, error) {
	body, err := json.Marshal(completionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" && p.apiKey != noAuthKey {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion API error: %s", resp.Status)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	p.log.Debug("completion", "model", p.model, "duration_ms", time.Since(start).Milliseconds())
	return &Response{Content: strings.TrimSpace(out.Choices[0].Message.Content)}, nil
}
