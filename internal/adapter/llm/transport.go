// Package llm contains the clients that carry a prompt to the generative
// model endpoint. Every client sends exactly one request per call and never
// retries; failures come back as *domain.TransportError.
package llm

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

// Transport issues a single, bounded request to the model.
type Transport interface {
	// Invoke sends prompt and returns the model's raw output text. When desc
	// is non-nil the model is asked for output matching it, otherwise for
	// generic JSON. A timeout <= 0 selects the transport's default.
	Invoke(ctx context.Context, prompt string, desc *schema.Descriptor, timeout time.Duration) (string, error)

	// Model returns the configured model identifier.
	Model() string
}

// Options configures a Transport. It is set once at construction.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	APIKey      string
}

const defaultTimeout = 60 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

func (o Options) timeoutOr(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// classify maps a failed call to a TransportError. callCtx is the context
// the request ran under.
func classify(callCtx context.Context, err error) *domain.TransportError {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return te
	}

	switch {
	case errors.Is(callCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return domain.NewTransportError(domain.TransportTimeout, 0, err)
	case errors.Is(err, context.Canceled):
		return domain.NewTransportError(domain.TransportUnreachable, 0, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewTransportError(domain.TransportTimeout, 0, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return domain.NewTransportError(domain.TransportUnreachable, 0, err)
	}
	return domain.NewTransportError(domain.TransportProtocol, 0, err)
}
