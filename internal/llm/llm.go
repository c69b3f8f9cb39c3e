// Package llm adapts OpenAI-compatible and Anthropic chat completion APIs
// behind one Provider interface. Callers treat responses as opaque beyond
// the extracted text.
package llm

import (
	"context"
	"encoding/json"
)

// Message is one chat message in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request holds everything needed for one completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Usage reports token accounting as returned by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Response is the outcome of one completion call. Text has thinking tags
// already stripped; the extracted sections are kept in Thinking. RawRequest
// and RawResponse are the wire payloads for inspection panes.
type Response struct {
	Text        string          `json:"text"`
	Thinking    []string        `json:"thinking,omitempty"`
	Model       string          `json:"model"`
	Usage       Usage           `json:"usage"`
	RawRequest  json.RawMessage `json:"raw_request,omitempty"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Provider is a chat completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
	ListModels(ctx context.Context) ([]string, error)
}
