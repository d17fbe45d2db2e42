package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"smartq/internal/prompt"
	"smartq/internal/schema"
)

// LangchainTransport reaches Ollama through the langchaingo client. That
// client only accepts a format name, so JSON output is requested and the
// schema, if any, is appended to the prompt.
type LangchainTransport struct {
	opts  Options
	model llms.Model
}

// NewLangchainTransport creates a LangchainTransport. hc may be nil.
func NewLangchainTransport(opts Options, hc *http.Client) (*LangchainTransport, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("ollama server URL cannot be empty")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("ollama model name cannot be empty")
	}

	clientOpts := []ollama.Option{
		ollama.WithServerURL(opts.BaseURL),
		ollama.WithModel(opts.Model),
		ollama.WithFormat("json"),
	}
	if hc != nil {
		clientOpts = append(clientOpts, ollama.WithHTTPClient(hc))
	}

	model, err := ollama.New(clientOpts...)
	if err != nil {
		return nil, err
	}
	return &LangchainTransport{opts: opts, model: model}, nil
}

func (t *LangchainTransport) Model() string { return t.opts.Model }

func (t *LangchainTransport) Invoke(ctx context.Context, p string, desc *schema.Descriptor, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.opts.timeoutOr(timeout))
	defer cancel()

	text, err := llms.GenerateFromSinglePrompt(callCtx, t.model, prompt.EmbedSchema(p, desc),
		llms.WithTemperature(t.opts.Temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", classify(callCtx, err)
	}
	return text, nil
}

var _ Transport = (*LangchainTransport)(nil)
