package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint:
// OpenAI itself, ollama, LM Studio, OpenRouter, and friends.
type OpenAIProvider struct {
	client *openai.Client
	name   string
}

// OpenAIConfig configures an OpenAI-compatible provider. BaseURL empty
// means the official endpoint.
type OpenAIConfig struct {
	Name    string
	APIKey  string
	BaseURL string
}

// NewOpenAIProvider builds the provider. Local endpoints often need no key,
// so a placeholder is substituted when the key is empty but a base URL is
// set.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	apiKey := cfg.APIKey
	if apiKey == "" && cfg.BaseURL != "" {
		apiKey = "not-needed"
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	name := cfg.Name
	if name == "" {
		name = "openai"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		name:   name,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends one chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	rawReq, _ := json.Marshal(chatReq)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{RawRequest: rawReq}, Classify(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return Response{RawRequest: rawReq}, Classify(p.name, fmt.Errorf("response contained no choices"))
	}

	text, thinking := SplitThinking(resp.Choices[0].Message.Content)
	rawResp, _ := json.Marshal(resp)

	return Response{
		Text:     text,
		Thinking: thinking,
		Model:    resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
		RawRequest:  rawReq,
		RawResponse: rawResp,
	}, nil
}

// ListModels fetches the model IDs the endpoint advertises, sorted.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, Classify(p.name, err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no models found at the endpoint")
	}
	sort.Strings(ids)
	return ids, nil
}
