package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// DetailInvalidator drops any cached full-detail view of a production order
// after one of its stages changes.
type DetailInvalidator interface {
	InvalidateDetail(ctx context.Context, noOrden string) error
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	invalidator DetailInvalidator
}

// NewService wires the stage ledger. invalidator may be nil when no detail
// cache is running.
func NewService(logger *slog.Logger, repo Repository, invalidator DetailInvalidator) *Service {
	return &Service{logger: logger, repo: repo, invalidator: invalidator}
}

// RecordStage validates and persists one stage record, linking it to the
// production order named in the payload when present.
func (s *Service) RecordStage(ctx context.Context, input Input) (int64, error) {
	if armado, ok := input.(*ArmadoInput); ok {
		if armado.CantidadArmado <= 0 || armado.CantidadEntregado <= 0 {
			return 0, fmt.Errorf("pipeline: armado: %w", ErrMissingFields)
		}
	}

	rec := input.Record()
	id, err := s.repo.InsertStage(ctx, rec, input.OrderCode())
	if err != nil {
		return 0, err
	}

	if code := input.OrderCode(); code != "" && s.invalidator != nil {
		if err := s.invalidator.InvalidateDetail(ctx, code); err != nil {
			s.logger.Warn("stage cache invalidation failed",
				slog.String("stage", string(rec.Type)),
				slog.String("no_orden", code),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("stage recorded",
		slog.String("stage", string(rec.Type)),
		slog.Int64("id", id),
		slog.String("no_orden", input.OrderCode()))
	return id, nil
}
