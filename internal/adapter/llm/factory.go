package llm

import (
	"fmt"

	"go.uber.org/zap"

	"smartq/internal/config"
)

// NewTransport builds the transport selected by cfg, wrapped with logging.
func NewTransport(cfg config.LLMConfig, l *zap.Logger) (Transport, error) {
	opts := Options{
		BaseURL:     cfg.Server,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		APIKey:      cfg.APIKey,
	}

	var base Transport
	var err error
	switch cfg.Transport {
	case "", "ollama":
		base, err = NewOllamaTransport(opts, nil)
	case "langchain":
		base, err = NewLangchainTransport(opts, nil)
	case "openai":
		base, err = NewOpenAITransport(opts, nil)
	default:
		return nil, fmt.Errorf("unknown LLM transport: %q", cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s transport: %w", cfg.Transport, err)
	}

	return WithLogging(base, l), nil
}
