package rewriter

import (
	"context"
	"strings"

	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Model transforms offensive text into a polite equivalent. Implementations
// wrap the shared generation resource; they are constructed once and never
// re-instantiated per call.
type Model interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// Service wraps the rewriting model behind a bounded-concurrency admission
// gate, sized independently from the classifier's.
type Service struct {
	model  Model
	gate   *semaphore.Weighted
	logger *zap.Logger
}

// NewService creates a new rewriter service. maxConcurrent caps in-flight
// model calls (2 in the deployed configuration).
func NewService(model Model, maxConcurrent int64, logger *zap.Logger) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		model:  model,
		gate:   semaphore.NewWeighted(maxConcurrent),
		logger: logger,
	}
}

// Rewrite produces a polite rendition of text through the admission gate.
func (s *Service) Rewrite(ctx context.Context, text string) (string, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return "", services.NewDomainError(services.ErrorTypeExternal,
			"rewriter admission gate wait aborted", err)
	}
	defer s.gate.Release(1)

	out, err := s.model.Rewrite(ctx, text)
	if err != nil {
		return "", services.NewDomainError(services.ErrorTypeExternal,
			"rewriter inference failed", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", services.NewDomainError(services.ErrorTypeExternal,
			"rewriter returned empty text", nil)
	}

	return out, nil
}
