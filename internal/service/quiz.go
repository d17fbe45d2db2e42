package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"smartq/internal/adapter/llm"
	"smartq/internal/domain"
	"smartq/internal/logger"
	"smartq/internal/normalize"
	"smartq/internal/prompt"
	"smartq/internal/schema"
	"smartq/internal/validation"
)

// QuizService defines the structured generation operations offered to the
// HTTP and CLI layers.
type QuizService interface {
	// GenerateQuestion asks the model for one new question about a topic.
	GenerateQuestion(ctx context.Context, req domain.GenerationRequest, timeout time.Duration) (*domain.QuizQuestion, error)
	// EvaluateAnswer scores the user's selection locally and asks the model
	// to explain the verdict.
	EvaluateAnswer(ctx context.Context, req domain.EvaluationRequest, timeout time.Duration) (*domain.FeedbackRecord, error)
}

type quizService struct {
	transport llm.Transport
	validator *validation.Validator
	evalCache EvaluationCache
	logger    *zap.Logger

	// inflight collapses concurrent identical evaluations into one model call.
	inflight singleflight.Group
}

// NewQuizService creates a QuizService. evalCache may be nil.
func NewQuizService(transport llm.Transport, evalCache EvaluationCache, l *zap.Logger) QuizService {
	if evalCache == nil {
		evalCache = NewEvaluationCache(nil, 0, l)
	}
	return &quizService{
		transport: transport,
		validator: validation.NewValidator(),
		evalCache: evalCache,
		logger:    logger.OrNop(l),
	}
}

func (s *quizService) GenerateQuestion(ctx context.Context, req domain.GenerationRequest, timeout time.Duration) (*domain.QuizQuestion, error) {
	if err := s.validator.ValidateGenerationRequest(req); err != nil {
		return nil, err
	}

	p := prompt.BuildGenerationPrompt(req.Topic, req.SystemPrompt, req.KnowledgeBase)

	raw, err := s.transport.Invoke(ctx, p, schema.Quiz, timeout)
	if err != nil {
		return nil, err
	}

	fields, err := normalize.Normalize(raw, schema.Quiz)
	if err != nil {
		s.logger.Warn("QuizService: model returned an unusable question",
			zap.String("topic", req.Topic),
			zap.Error(err),
			zap.String("raw_response", truncate(raw, 500)),
		)
		return nil, err
	}

	question, err := domain.ToQuizQuestion(fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("QuizService: question generated",
		zap.String("question_id", question.ID),
		zap.String("topic", req.Topic),
		zap.Int("options", len(question.Options)),
	)
	return question, nil
}

func (s *quizService) EvaluateAnswer(ctx context.Context, req domain.EvaluationRequest, timeout time.Duration) (*domain.FeedbackRecord, error) {
	if err := s.validator.ValidateEvaluationRequest(req); err != nil {
		return nil, err
	}

	verdict := domain.Score(req.Options, req.SelectedIndices())

	cached, err := s.evalCache.Get(ctx, req)
	if err != nil {
		s.logger.Error("QuizService: evaluation cache lookup failed", zap.Error(err), zap.String("question_id", req.QuestionID))
	} else if cached != nil {
		cached.IsCorrect = verdict
		return cached, nil
	}

	key, err := EvaluationCacheKey(req)
	if err != nil {
		return nil, domain.NewInternalError("Failed to derive evaluation key", err)
	}

	// The shared call is detached from every caller; each caller waits on
	// it under its own context and timeout.
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.explain(context.WithoutCancel(ctx), req, verdict, timeout)
	})

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("QuizService: evaluation shared with a concurrent request", zap.String("question_id", req.QuestionID))
		}
		record := *res.Val.(*domain.FeedbackRecord)
		return &record, nil
	case <-ctx.Done():
		s.logger.Warn("QuizService: caller left before feedback was ready", zap.String("question_id", req.QuestionID), zap.Error(ctx.Err()))
		return nil, abandoned(ctx.Err())
	case <-expired:
		s.logger.Warn("QuizService: feedback not ready within timeout", zap.String("question_id", req.QuestionID), zap.Duration("timeout", timeout))
		return nil, domain.NewTransportError(domain.TransportTimeout, 0, context.DeadlineExceeded)
	}
}

// abandoned maps a caller's context error to the transport error it would
// have produced had the caller made the model call itself.
func abandoned(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTransportError(domain.TransportTimeout, 0, err)
	}
	return domain.NewTransportError(domain.TransportUnreachable, 0, err)
}

// explain asks the model to explain verdict and caches the result.
func (s *quizService) explain(ctx context.Context, req domain.EvaluationRequest, verdict bool, timeout time.Duration) (*domain.FeedbackRecord, error) {
	p := prompt.BuildEvaluationPrompt(req.Question, req.Options, req.Selections, req.SupplementaryAnswer, verdict)

	raw, err := s.transport.Invoke(ctx, p, schema.Evaluation, timeout)
	if err != nil {
		return nil, err
	}

	fields, err := normalize.Normalize(raw, schema.Evaluation)
	if err != nil {
		s.logger.Warn("QuizService: model returned unusable feedback",
			zap.String("question_id", req.QuestionID),
			zap.Error(err),
			zap.String("raw_response", truncate(raw, 500)),
		)
		return nil, err
	}

	if reported, _ := fields["isCorrect"].(bool); reported != verdict {
		s.logger.Info("QuizService: model verdict overridden by local score",
			zap.String("question_id", req.QuestionID),
			zap.Bool("model_verdict", reported),
			zap.Bool("verdict", verdict),
		)
	}

	record, err := domain.ToFeedbackRecord(fields, verdict)
	if err != nil {
		return nil, err
	}

	if err := s.evalCache.Put(ctx, req, record); err != nil {
		s.logger.Error("QuizService: failed to store feedback in cache", zap.Error(err), zap.String("question_id", req.QuestionID))
	}
	return record, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
