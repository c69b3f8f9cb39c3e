package llm

import (
	"context"
	"encoding/json"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider implements Provider on the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	models []string
}

// NewAnthropicProvider builds the provider. knownModels is the configured
// model list, returned by ListModels since the API has no listing endpoint
// usable here.
func NewAnthropicProvider(apiKey string, knownModels []string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic provider requires an API key")
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey),
		models: knownModels,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends one Messages API request. System-role messages are folded
// into the request's system prompt; everything else maps by role.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (Response, error) {
	var system string
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case "assistant":
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	temp := req.Temperature
	msgReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		Messages:    messages,
		System:      system,
		MaxTokens:   req.MaxTokens,
		Temperature: &temp,
	}
	rawReq, _ := json.Marshal(msgReq)

	resp, err := p.client.CreateMessages(ctx, msgReq)
	if err != nil {
		return Response{RawRequest: rawReq}, Classify(p.Name(), err)
	}

	var content string
	if len(resp.Content) > 0 {
		content = resp.Content[0].GetText()
	}
	text, thinking := SplitThinking(content)
	rawResp, _ := json.Marshal(resp)

	return Response{
		Text:     text,
		Thinking: thinking,
		Model:    string(resp.Model),
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		},
		RawRequest:  rawReq,
		RawResponse: rawResp,
	}, nil
}

// ListModels returns the configured model list.
func (p *AnthropicProvider) ListModels(_ context.Context) ([]string, error) {
	if len(p.models) == 0 {
		return nil, fmt.Errorf("no anthropic models configured")
	}
	return p.models, nil
}
