package repository

import (
	"fmt"
	"log/slog"

	"github.com/whiteknight/neoknight/internal/config"
	"github.com/whiteknight/neoknight/internal/logger"
)

// ClientSideEvaluationHandler is consulted once every time a query falls back
// to client-side evaluation. Returning an error aborts the query.
type ClientSideEvaluationHandler interface {
	Handle(entity string) error
}

// EvaluationPolicy enforces the configured client-side evaluation mode.
type EvaluationPolicy struct {
	mode   config.EvaluationMode
	logger *slog.Logger
}

// NewEvaluationPolicy creates a policy. An empty mode means warn.
func NewEvaluationPolicy(mode config.EvaluationMode, l *slog.Logger) *EvaluationPolicy {
	if mode == "" {
		mode = config.EvaluationWarn
	}
	return &EvaluationPolicy{mode: mode, logger: logger.OrDefault(l).With(logger.Scope("repository"))}
}

// Handle applies the policy for entity.
func (p *EvaluationPolicy) Handle(entity string) error {
	switch p.mode {
	case config.EvaluationAllow:
		return nil
	case config.EvaluationThrow:
		return fmt.Errorf("%w: %s", ErrClientSideEvaluation, entity)
	default:
		p.logger.Warn("evaluating specification client side", slog.String("entity", entity))
		return nil
	}
}
