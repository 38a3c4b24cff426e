package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/grupoebmx/backendgrupoeb/internal/retention"
)

// RetentionJobs adapts the retention service to the queue.
type RetentionJobs struct {
	logger  *slog.Logger
	service *retention.Service
}

func NewRetentionJobs(logger *slog.Logger, service *retention.Service) *RetentionJobs {
	return &RetentionJobs{logger: logger, service: service}
}

// HandleSoftSweep processes TaskRetentionSoftSweep tasks.
func (j *RetentionJobs) HandleSoftSweep(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	swept, err := j.service.SweepCompleted(ctx, payload.Days)
	if err != nil {
		j.logger.Error("soft sweep job failed", slog.String("error", err.Error()))
		return err
	}
	j.logger.Info("soft sweep job done", slog.Int64("swept", swept), slog.Int("days", payload.Days))
	return nil
}

// HandleDeepSweep processes TaskRetentionDeepSweep tasks.
func (j *RetentionJobs) HandleDeepSweep(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	report, err := j.service.PurgeOrders(ctx, payload.Days)
	if err != nil {
		j.logger.Error("deep sweep job failed", slog.String("error", err.Error()))
		return err
	}
	j.logger.Info("deep sweep job done",
		slog.Int64("ordenes", report.OrdersPurged),
		slog.Int64("pedidos", report.PedidosPurged),
		slog.Int("days", payload.Days))
	return nil
}
