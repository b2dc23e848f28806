// Package ai provides LLM chat backends used for metadata translation.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("empty completion response")

// Provider is an LLM backend.
type Provider interface {
	// Chat sends the conversation and returns the model's reply.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (*Response, error)
}

// Message is a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatOptions tunes a single completion.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Response is an LLM response.
type Response struct {
	Content string `json:"content,omitempty"`
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: "system", Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: "user", Content: content}
}
