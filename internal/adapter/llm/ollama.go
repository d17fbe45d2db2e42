package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

const generatePath = "/api/generate"

// generateRequest is the non-streaming body of POST /api/generate.
type generateRequest struct {
	Model       string          `json:"model"`
	Prompt      string          `json:"prompt"`
	Format      any             `json:"format"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
	Options     generateOptions `json:"options"`
}

// Ollama reads sampling parameters from options; the top-level temperature
// is kept for servers that follow the flat contract.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error,omitempty"`
}

// OllamaTransport talks to the native Ollama generate endpoint over
// net/http. A schema is passed through as the requested format.
type OllamaTransport struct {
	opts       Options
	httpClient *http.Client
}

// NewOllamaTransport creates an OllamaTransport. hc may be nil.
func NewOllamaTransport(opts Options, hc *http.Client) (*OllamaTransport, error) {
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.BaseURL == "" {
		return nil, errors.New("ollama server URL cannot be empty")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("ollama model name cannot be empty")
	}
	if hc == nil {
		// Deadlines come from the per-call context.
		hc = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &OllamaTransport{opts: opts, httpClient: hc}, nil
}

func (t *OllamaTransport) Model() string { return t.opts.Model }

func (t *OllamaTransport) Invoke(ctx context.Context, prompt string, desc *schema.Descriptor, timeout time.Duration) (string, error) {
	body := generateRequest{
		Model:       t.opts.Model,
		Prompt:      prompt,
		Format:      "json",
		Temperature: t.opts.Temperature,
		Stream:      false,
		Options:     generateOptions{Temperature: t.opts.Temperature},
	}
	if desc != nil {
		body.Format = desc
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", domain.NewTransportError(domain.TransportProtocol, 0, fmt.Errorf("encode request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, t.opts.timeoutOr(timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, t.opts.BaseURL+generatePath, &buf)
	if err != nil {
		return "", domain.NewTransportError(domain.TransportProtocol, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", classify(callCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classify(callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewTransportError(domain.TransportProtocol, resp.StatusCode, upstreamError(resp.StatusCode, raw))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewTransportError(domain.TransportProtocol, resp.StatusCode, fmt.Errorf("decode response envelope: %w", err))
	}
	if out.Error != "" {
		return "", domain.NewTransportError(domain.TransportProtocol, resp.StatusCode, errors.New(out.Error))
	}
	if len(out.Response) == 0 || string(out.Response) == "null" {
		return "", domain.NewTransportError(domain.TransportProtocol, resp.StatusCode, errors.New("response field missing from envelope"))
	}

	// The envelope normally carries the output as a JSON string; some
	// servers inline the structured object instead.
	var text string
	if err := json.Unmarshal(out.Response, &text); err == nil {
		return text, nil
	}
	return string(out.Response), nil
}

func upstreamError(status int, raw []byte) error {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Error) != "" {
		return fmt.Errorf("upstream status %d: %s", status, strings.TrimSpace(env.Error))
	}
	body := strings.TrimSpace(string(raw))
	if len(body) > 512 {
		body = body[:512]
	}
	if body == "" {
		body = http.StatusText(status)
	}
	return fmt.Errorf("upstream status %d: %s", status, body)
}

var _ Transport = (*OllamaTransport)(nil)
