package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartq/internal/domain"
)

func TestMapDomainErrorToHTTPStatus(t *testing.T) {
	cases := map[domain.ErrorCode]int{
		domain.CodeInvalidInput:     http.StatusBadRequest,
		domain.CodeInvalidLLMOutput: http.StatusBadGateway,
		domain.CodeLLMProtocol:      http.StatusBadGateway,
		domain.CodeLLMTimeout:       http.StatusGatewayTimeout,
		domain.CodeLLMUnavailable:   http.StatusServiceUnavailable,
		domain.CodeInternal:         http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, mapDomainErrorToHTTPStatus(&domain.DomainError{Code: code}), code)
	}
}

func TestErrorHandler_FiberError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error {
		return domain.NewTransportError(domain.TransportUnreachable, 0, errors.New("connection refused"))
	})

	t.Run("assigns a request id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
		require.NoError(t, err)
		_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, id)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
	})

	t.Run("logs the final status of failed requests", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		entries := logs.FilterMessage("HTTP Request").FilterField(zap.String("path", "/fail")).All()
		require.Len(t, entries, 1)
		assert.EqualValues(t, http.StatusServiceUnavailable, entries[0].ContextMap()["status"])
	})
}
