package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartq/internal/domain"
	"smartq/internal/dto"
	"smartq/internal/handler"
	"smartq/internal/middleware"
)

// --- Mocks ---

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GenerateQuestion(ctx context.Context, req domain.GenerationRequest, timeout time.Duration) (*domain.QuizQuestion, error) {
	args := m.Called(ctx, req, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizQuestion), args.Error(1)
}

func (m *MockQuizService) EvaluateAnswer(ctx context.Context, req domain.EvaluationRequest, timeout time.Duration) (*domain.FeedbackRecord, error) {
	args := m.Called(ctx, req, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackRecord), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Helpers ---

const testTimeout = 30 * time.Second

func setupApp(svc *MockQuizService, cache domain.Cache) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	h := handler.NewQuizHandler(svc, "gemma3:27b", testTimeout, cache, nil)
	api := app.Group("/api")
	api.Get("/health", h.Health)
	api.Post("/generate", middleware.RequireJSON(), h.GenerateQuiz)
	api.Post("/evaluate", middleware.RequireJSON(), h.EvaluateAnswer)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, []byte) {
	t.Helper()
	raw, ok := body.(string)
	if !ok {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = string(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// --- Tests ---

func TestQuizHandler_GenerateQuiz(t *testing.T) {
	svc := new(MockQuizService)
	q := &domain.QuizQuestion{
		ID:       "01HZY3Q5G8M1V4Y0S2C9D7K6XW",
		Question: "Which keyword declares a constant in Go?",
		Options: []domain.Option{
			{Text: "const", IsCorrect: true, Type: domain.OptionRadio},
			{Text: "let", Type: domain.OptionRadio},
		},
		Explanation: "const declares compile time constants.",
	}
	svc.On("GenerateQuestion", mock.Anything, domain.GenerationRequest{Topic: "Go", SystemPrompt: "Beginners."}, testTimeout).Return(q, nil)

	resp, body := postJSON(t, setupApp(svc, nil), "/api/generate", dto.GenerateQuizRequest{Topic: "Go", SystemPrompt: "Beginners."})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.QuizResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, q.ID, got.ID)
	assert.Equal(t, []dto.OptionDTO{{Text: "const", IsCorrect: true, Type: "radio"}, {Text: "let", Type: "radio"}}, got.Options)
	svc.AssertExpectations(t)
}

func TestQuizHandler_EvaluateAnswer(t *testing.T) {
	svc := new(MockQuizService)
	expectedReq := domain.EvaluationRequest{
		Question:            "Capital of France?",
		Options:             []domain.Option{{Text: "Paris", IsCorrect: true, Type: "radio"}, {Text: "Lyon"}},
		Selections:          []domain.SelectedOption{{Index: 1, Text: "Lyon"}},
		SupplementaryAnswer: "Why not Lyon?",
	}
	svc.On("EvaluateAnswer", mock.Anything, expectedReq, testTimeout).
		Return(&domain.FeedbackRecord{IsCorrect: false, Feedback: "Not quite.", DetailedExplanation: "Paris is the capital."}, nil)

	resp, body := postJSON(t, setupApp(svc, nil), "/api/evaluate", `{
		"question": "Capital of France?",
		"options": [{"text": "Paris", "isCorrect": true, "type": "radio"}, {"text": "Lyon", "isCorrect": false}],
		"selected_options": [{"index": 1, "text": "Lyon"}],
		"additional_answer": "Why not Lyon?"
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isCorrect":false,"feedback":"Not quite.","detailedExplanation":"Paris is the capital."}`, string(body))
	svc.AssertExpectations(t)
}

func TestQuizHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"input", domain.InputErrors{domain.NewInputError("topic", "topic is required")}, http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid output", domain.NewValidationError(domain.MissingField, "explanation", "required field is absent", nil), http.StatusBadGateway, "INVALID_LLM_OUTPUT"},
		{"timeout", domain.NewTransportError(domain.TransportTimeout, 0, context.DeadlineExceeded), http.StatusGatewayTimeout, "LLM_TIMEOUT"},
		{"unreachable", domain.NewTransportError(domain.TransportUnreachable, 0, errors.New("connection refused")), http.StatusServiceUnavailable, "LLM_SERVICE_UNAVAILABLE"},
		{"protocol", domain.NewTransportError(domain.TransportProtocol, 500, errors.New("boom")), http.StatusBadGateway, "LLM_PROTOCOL_ERROR"},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQuizService)
			svc.On("GenerateQuestion", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			resp, body := postJSON(t, setupApp(svc, nil), "/api/generate", dto.GenerateQuizRequest{Topic: "t", SystemPrompt: "s"})

			assert.Equal(t, tt.status, resp.StatusCode)
			var errResp middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.code, errResp.Code)
			assert.Equal(t, tt.status, errResp.Status)
		})
	}
}

func TestQuizHandler_BadBody(t *testing.T) {
	svc := new(MockQuizService)
	app := setupApp(svc, nil)

	resp, _ := postJSON(t, app, "/api/evaluate", `{"question": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString("topic=go"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	svc.AssertNotCalled(t, "EvaluateAnswer", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "GenerateQuestion", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuizHandler_Health(t *testing.T) {
	t.Run("cache disabled", func(t *testing.T) {
		resp, err := setupApp(new(MockQuizService), nil).Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
		require.NoError(t, err)
		var got dto.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, dto.HealthResponse{Status: "ok", Model: "gemma3:27b", Cache: "disabled"}, got)
	})

	t.Run("cache down", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))

		resp, err := setupApp(new(MockQuizService), cache).Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got dto.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "unavailable", got.Cache)
	})
}
