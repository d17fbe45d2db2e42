package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartq/internal/domain"
	"smartq/internal/dto"
	"smartq/internal/logger"
	"smartq/internal/service"
)

const healthPingTimeout = 2 * time.Second

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
	model   string
	timeout time.Duration
	cache   domain.Cache
	logger  *zap.Logger
}

// NewQuizHandler creates a new QuizHandler instance. timeout bounds every
// model call made on behalf of a request; cache may be nil.
func NewQuizHandler(svc service.QuizService, model string, timeout time.Duration, cache domain.Cache, l *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service: svc,
		model:   model,
		timeout: timeout,
		cache:   cache,
		logger:  logger.OrNop(l),
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz question
// @Description Asks the model for one multiple choice question about the topic
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInputError("body", "request body is not valid JSON")
	}

	question, err := h.service.GenerateQuestion(c.UserContext(), req.ToDomain(), h.timeout)
	if err != nil {
		return err
	}

	return c.JSON(dto.NewQuizResponse(question))
}

// EvaluateAnswer godoc
// @Summary Evaluate an answer
// @Description Scores the selected options and returns the model's explanation
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.EvaluateAnswerRequest true "Evaluation request"
// @Success 200 {object} dto.EvaluationResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /evaluate [post]
func (h *QuizHandler) EvaluateAnswer(c *fiber.Ctx) error {
	var req dto.EvaluateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInputError("body", "request body is not valid JSON")
	}

	record, err := h.service.EvaluateAnswer(c.UserContext(), req.ToDomain(), h.timeout)
	if err != nil {
		return err
	}

	return c.JSON(dto.NewEvaluationResponse(record))
}

// Health godoc
// @Summary Health check
// @Description Reports liveness, the configured model and cache connectivity
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", Model: h.model, Cache: "disabled"}
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("Health: cache ping failed", zap.Error(err))
			resp.Cache = "unavailable"
		} else {
			resp.Cache = "ok"
		}
	}
	return c.JSON(resp)
}
