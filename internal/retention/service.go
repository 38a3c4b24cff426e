package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/grupoebmx/backendgrupoeb/internal/observability"
)

var ErrInvalidWindow = errors.New("retention window must be at least one day")

type Service struct {
	logger  *slog.Logger
	repo    Repository
	metrics *observability.Metrics
	now     func() time.Time
}

// NewService wires the sweeps. metrics may be nil in tests.
func NewService(logger *slog.Logger, repo Repository, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, repo: repo, metrics: metrics, now: time.Now}
}

// SweepCompleted hides completed orders older than the window.
func (s *Service) SweepCompleted(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 1 {
		return 0, ErrInvalidWindow
	}
	cutoff := Cutoff(s.now(), olderThanDays)
	swept, err := s.repo.SweepCompleted(ctx, cutoff)
	s.observe("soft", swept, err)
	if err != nil {
		return 0, err
	}
	s.logger.Info("soft sweep done",
		slog.Time("cutoff", cutoff),
		slog.Int64("swept", swept))
	return swept, nil
}

// PurgeOrders permanently removes aged completed orders and any pedidos left
// without production.
func (s *Service) PurgeOrders(ctx context.Context, olderThanDays int) (*PurgeReport, error) {
	if olderThanDays < 1 {
		return nil, ErrInvalidWindow
	}
	cutoff := Cutoff(s.now(), olderThanDays)
	report, err := s.repo.PurgeOrders(ctx, cutoff)
	if err != nil {
		s.observe("deep", 0, err)
		return nil, err
	}
	s.observe("deep", report.OrdersPurged, nil)
	s.logger.Info("deep sweep done",
		slog.Time("cutoff", cutoff),
		slog.Int64("ordenes", report.OrdersPurged),
		slog.Int64("pedidos", report.PedidosPurged))
	return report, nil
}

func (s *Service) observe(variant string, rows int64, err error) {
	if s.metrics != nil {
		s.metrics.ObserveSweep(variant, int(rows), err)
	}
}
