package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoClient implements Client on top of an eino chat model. The OpenAI
// provider is the production binding; tests hand in a fake model.
type EinoClient struct {
	model model.BaseChatModel
}

// NewOpenAIChatModel builds the eino OpenAI chat model shared by the
// classifier and the chat agent.
func NewOpenAIChatModel(ctx context.Context, apiKey, modelName, baseURL string) (*openai.ChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = "gpt-4o-mini"
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create openai chat model: %w", err)
	}
	return cm, nil
}

// NewEinoClient wraps an eino chat model.
func NewEinoClient(m model.BaseChatModel) *EinoClient {
	if m == nil {
		panic("llm: chat model cannot be nil")
	}
	return &EinoClient{model: m}
}

// Complete sends the request as one Generate call.
func (c *EinoClient) Complete(ctx context.Context, req Request) (Response, error) {
	msgs := make([]*schema.Message, 0, len(req.System)+len(req.Messages))
	for _, s := range req.System {
		if strings.TrimSpace(s) == "" {
			continue
		}
		msgs = append(msgs, schema.SystemMessage(s))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, schema.SystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, schema.UserMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		default:
			return Response{}, fmt.Errorf("llm: unsupported role %q", m.Role)
		}
	}
	if len(msgs) == 0 {
		return Response{}, errors.New("llm: empty request")
	}

	var opts []model.Option
	if req.Temperature >= 0 {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(int(req.MaxTokens)))
	}
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}

	out, err := c.model.Generate(ctx, msgs, opts...)
	if err != nil {
		return Response{}, fmt.Errorf("llm: completion failed: %w", err)
	}
	if out == nil {
		return Response{}, errors.New("llm: empty completion")
	}

	resp := Response{Text: strings.TrimSpace(out.Content)}
	if out.ResponseMeta != nil {
		resp.StopReason = out.ResponseMeta.FinishReason
		if u := out.ResponseMeta.Usage; u != nil {
			resp.Usage = Usage{
				InputTokens:  int32(u.PromptTokens),
				OutputTokens: int32(u.CompletionTokens),
				TotalTokens:  int32(u.TotalTokens),
			}
		}
	}
	return resp, nil
}
