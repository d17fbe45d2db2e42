package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"smartq/internal/cache"
	"smartq/internal/domain"
	"smartq/internal/logger"
)

const (
	evaluationCacheService = "evaluate"
	evaluationCacheObject  = "feedback"
)

// EvaluationCache stores feedback for identical evaluation requests so the
// model is not asked twice for the same explanation.
type EvaluationCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, req domain.EvaluationRequest) (*domain.FeedbackRecord, error)
	Put(ctx context.Context, req domain.EvaluationRequest, record *domain.FeedbackRecord) error
}

type evaluationCacheImpl struct {
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewEvaluationCache creates an EvaluationCache backed by c. A nil c yields
// a cache that always misses.
func NewEvaluationCache(c domain.Cache, ttl time.Duration, l *zap.Logger) EvaluationCache {
	return &evaluationCacheImpl{cache: c, ttl: ttl, logger: logger.OrNop(l)}
}

func (s *evaluationCacheImpl) Get(ctx context.Context, req domain.EvaluationRequest) (*domain.FeedbackRecord, error) {
	if s.cache == nil {
		return nil, nil
	}

	key, err := EvaluationCacheKey(req)
	if err != nil {
		return nil, err
	}

	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Debug("EvaluationCache: cache miss", zap.String("key", key))
			return nil, nil
		}
		return nil, err
	}

	var record domain.FeedbackRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		s.logger.Warn("EvaluationCache: dropping unreadable cached feedback", zap.String("key", key), zap.Error(err))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.logger.Warn("EvaluationCache: failed to delete cached feedback", zap.String("key", key), zap.Error(delErr))
		}
		return nil, nil
	}
	s.logger.Debug("EvaluationCache: cache hit", zap.String("key", key))
	return &record, nil
}

func (s *evaluationCacheImpl) Put(ctx context.Context, req domain.EvaluationRequest, record *domain.FeedbackRecord) error {
	if s.cache == nil || record == nil {
		return nil
	}

	key, err := EvaluationCacheKey(req)
	if err != nil {
		return err
	}
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, string(val), s.ttl)
}

type canonicalEvaluation struct {
	Question   string          `json:"q"`
	Options    []domain.Option `json:"o"`
	Selections []int           `json:"s"`
	Answer     string          `json:"a"`
}

// EvaluationCacheKey derives the cache key from the content of req. The
// question id is ignored; selection order is not significant.
func EvaluationCacheKey(req domain.EvaluationRequest) (string, error) {
	options := make([]domain.Option, len(req.Options))
	for i, o := range req.Options {
		o.Type = o.Kind()
		options[i] = o
	}
	selected := req.SelectedIndices()
	sort.Ints(selected)

	raw, err := json.Marshal(canonicalEvaluation{
		Question:   req.Question,
		Options:    options,
		Selections: selected,
		Answer:     req.SupplementaryAnswer,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return cache.GenerateCacheKey(evaluationCacheService, evaluationCacheObject, hex.EncodeToString(sum[:])), nil
}
