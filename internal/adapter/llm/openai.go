package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

// OpenAITransport targets an OpenAI compatible chat completions endpoint
// (Ollama serves one under /v1). Schemas are sent as a json_schema response
// format.
type OpenAITransport struct {
	opts   Options
	client *openai.Client
}

// NewOpenAITransport creates an OpenAITransport. hc may be nil.
func NewOpenAITransport(opts Options, hc *http.Client) (*OpenAITransport, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("openai model name cannot be empty")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &OpenAITransport{opts: opts, client: openai.NewClientWithConfig(cfg)}, nil
}

func (t *OpenAITransport) Model() string { return t.opts.Model }

func (t *OpenAITransport) Invoke(ctx context.Context, prompt string, desc *schema.Descriptor, timeout time.Duration) (string, error) {
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	if desc != nil {
		format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        desc.Name,
				Description: desc.Description,
				Schema:      desc,
			},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, t.opts.timeoutOr(timeout))
	defer cancel()

	resp, err := t.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: t.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    float32(t.opts.Temperature),
		ResponseFormat: format,
	})
	if err != nil {
		return "", classifyOpenAI(callCtx, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewTransportError(domain.TransportProtocol, 0, errors.New("completion has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAI(callCtx context.Context, err error) *domain.TransportError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewTransportError(domain.TransportProtocol, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return domain.NewTransportError(domain.TransportProtocol, reqErr.HTTPStatusCode, err)
	}
	return classify(callCtx, err)
}

var _ Transport = (*OpenAITransport)(nil)
