package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mdit/internal/chat"
)

// Config selects and authenticates a model backend. Provider ids map to
// OpenAI-compatible endpoints; BaseURL overrides the mapping.
type Config struct {
	Provider   string
	BaseURL    string
	APIKey     string
	AccountID  string
	Model      string
	TimeoutMS  int
	MaxRetries int
}

// OpenAIProvider implements Provider over any OpenAI-compatible endpoint
// using the go-openai SDK.
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI builds a provider from the chat configuration.
func NewOpenAI(cfg Config) (*OpenAIProvider, error) {
	baseURL, err := resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}
	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	sdkCfg.BaseURL = strings.TrimRight(baseURL, "/")

	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	sdkCfg.HTTPClient = httpClient

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(sdkCfg),
		cfg:    cfg,
	}, nil
}

func resolveBaseURL(cfg Config) (string, error) {
	if strings.TrimSpace(cfg.BaseURL) != "" {
		return cfg.BaseURL, nil
	}
	switch cfg.Provider {
	case "", "openai":
		return "https://api.openai.com/v1", nil
	case "gemini":
		return "https://generativelanguage.googleapis.com/v1beta/openai", nil
	case "cloudflare":
		if strings.TrimSpace(cfg.AccountID) == "" {
			return "", fmt.Errorf("cloudflare provider requires account_id")
		}
		return fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/ai/v1", cfg.AccountID), nil
	default:
		return "", fmt.Errorf("unknown provider %q and no base_url configured", cfg.Provider)
	}
}

func (p *OpenAIProvider) Name() string {
	if p.cfg.Provider == "" {
		return "openai"
	}
	return p.cfg.Provider
}

func (p *OpenAIProvider) CurrentModel() string {
	return p.cfg.Model
}

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	sdkReq := p.buildRequest(model, req)

	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(150*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return ChatResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}
		resp, err := p.client.CreateChatCompletion(ctx, sdkReq)
		if err == nil {
			return convertResponse(resp)
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ChatResponse{}, err
		}
	}
	return ChatResponse{}, fmt.Errorf("provider chat failed after %d retries: %w", p.cfg.MaxRetries, lastErr)
}

func (p *OpenAIProvider) buildRequest(model string, req ChatRequest) openai.ChatCompletionRequest {
	sdkReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: convertMessages(p.cfg.Provider, req.Messages),
	}
	if len(req.Tools) > 0 {
		sdkReq.Tools = convertTools(req.Tools)
		sdkReq.ToolChoice = "auto"
	}
	if req.Temperature != nil {
		sdkReq.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		sdkReq.MaxTokens = req.MaxTokens
	}
	return sdkReq
}

func convertMessages(providerID string, messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		content := m.Content
		// Gemini's OpenAI-compat endpoint expects instructions in the first
		// user turn rather than a system message.
		if providerID == "gemini" && role == "system" {
			role = "user"
			content = "[SYSTEM]\n" + content
		}
		msg := openai.ChatCompletionMessage{
			Role:       role,
			Content:    content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			msg.ToolCalls = make([]openai.ToolCall, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolType(tc.Type),
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
		}
		out = append(out, msg)
	}
	return out
}

func convertTools(tools []chat.ToolDef) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

func convertResponse(resp openai.ChatCompletionResponse) (ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("chat response has no choices")
	}
	choice := resp.Choices[0]
	out := ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chat.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: chat.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}
