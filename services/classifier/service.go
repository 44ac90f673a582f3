package classifier

import (
	"context"

	"github.com/polite-web/polite-backend/internal/lexical"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// blocklistScore is the score reported for deterministic blocklist hits.
// It sits above any sane threshold without claiming full certainty.
const blocklistScore = 0.9

// Model scores a text for abusiveness, returning a probability in [0,1].
// Implementations wrap the shared inference resource; they are constructed
// once and never re-instantiated per call.
type Model interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Service wraps the classification model behind a bounded-concurrency
// admission gate. The model holds large weights, so at most MaxConcurrent
// calls may be in flight; further callers block on the gate until a slot
// frees or their context expires.
type Service struct {
	model    Model
	gate     *semaphore.Weighted
	screener *lexical.Screener
	logger   *zap.Logger
}

// NewService creates a new classifier service. maxConcurrent caps in-flight
// model calls (1 in the deployed configuration, to cap the memory peak).
func NewService(model Model, maxConcurrent int64, blocklist []string, logger *zap.Logger) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		model:    model,
		gate:     semaphore.NewWeighted(maxConcurrent),
		screener: lexical.NewScreener(blocklist),
		logger:   logger,
	}
}

// Classify scores text against threshold. Over-threshold uses strict
// inequality: a score equal to the threshold is not over.
//
// A lexical blocklist check short-circuits known-offensive text to
// (over=true, blocklistScore) without entering the gate or touching the
// model, keeping cheap certain cases off the expensive path.
func (s *Service) Classify(ctx context.Context, text string, threshold float64) (over bool, score float64, err error) {
	if _, hit := s.screener.Screen(text); hit {
		s.logger.Debug("blocklist hit, skipping model call")
		return true, blocklistScore, nil
	}

	if err := s.gate.Acquire(ctx, 1); err != nil {
		return false, 0, services.NewDomainError(services.ErrorTypeExternal,
			"classifier admission gate wait aborted", err)
	}
	defer s.gate.Release(1)

	score, err = s.model.Score(ctx, text)
	if err != nil {
		return false, 0, services.NewDomainError(services.ErrorTypeExternal,
			"classifier inference failed", err)
	}

	return score > threshold, score, nil
}
