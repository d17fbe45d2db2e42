package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"smartq/internal/domain"
	"smartq/internal/logger"
	"smartq/internal/schema"
)

type loggingTransport struct {
	inner  Transport
	logger *zap.Logger
}

// WithLogging wraps a Transport so every call is logged with its latency
// and outcome.
func WithLogging(inner Transport, l *zap.Logger) Transport {
	return &loggingTransport{inner: inner, logger: logger.OrNop(l)}
}

func (l *loggingTransport) Model() string { return l.inner.Model() }

func (l *loggingTransport) Invoke(ctx context.Context, prompt string, desc *schema.Descriptor, timeout time.Duration) (string, error) {
	schemaName := "json"
	if desc != nil {
		schemaName = desc.Name
	}
	l.logger.Debug("Sending request to LLM",
		zap.String("model", l.inner.Model()),
		zap.String("format", schemaName),
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	text, err := l.inner.Invoke(ctx, prompt, desc, timeout)
	latency := time.Since(start)

	if err != nil {
		fields := []zap.Field{
			zap.String("model", l.inner.Model()),
			zap.String("format", schemaName),
			zap.Duration("latency", latency),
			zap.Error(err),
		}
		var te *domain.TransportError
		if errors.As(err, &te) {
			fields = append(fields, zap.String("kind", string(te.Kind)), zap.Int("upstream_status", te.StatusCode))
		}
		l.logger.Error("LLM request failed", fields...)
		return "", err
	}

	l.logger.Info("LLM request completed",
		zap.String("model", l.inner.Model()),
		zap.String("format", schemaName),
		zap.Duration("latency", latency),
		zap.Int("response_length", len(text)),
	)
	return text, nil
}
