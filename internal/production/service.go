package production

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *DetailCache
	group  singleflight.Group
}

// NewService wires the production order aggregator. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, cache *DetailCache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// Create opens a production order and returns its OP code.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	code, err := s.repo.Create(ctx, req)
	if err != nil {
		return "", err
	}
	s.logger.Info("orden de producción created",
		slog.String("no_orden", code),
		slog.String("no_pedido", req.NoPedidoID),
		slog.String("producto", req.ProductoIdentificador))
	return code, nil
}

func (s *Service) Get(ctx context.Context, noOrden string) (Order, error) {
	return s.repo.Get(ctx, noOrden)
}

func (s *Service) Lookup(ctx context.Context, noPedido, producto string) (LookupResult, error) {
	return s.repo.Lookup(ctx, noPedido, producto)
}

// Complete marks the order done and evicts its cached detail view.
func (s *Service) Complete(ctx context.Context, noOrden string) (Order, error) {
	order, err := s.repo.Complete(ctx, noOrden)
	if err != nil {
		return Order{}, err
	}
	if err := s.cache.InvalidateDetail(ctx, noOrden); err != nil {
		s.logger.Warn("detail cache invalidation failed",
			slog.String("no_orden", noOrden),
			slog.String("error", err.Error()))
	}
	s.logger.Info("orden de producción completed", slog.String("no_orden", noOrden))
	return order, nil
}

// FullDetail serves the composite view through the cache, collapsing
// concurrent misses for the same order into a single database build.
func (s *Service) FullDetail(ctx context.Context, noOrden string) (*FullDetail, error) {
	result := s.group.DoChan(noOrden, func() (any, error) {
		return s.cache.Fetch(ctx, noOrden, func(ctx context.Context) (*FullDetail, error) {
			return s.repo.FullDetail(ctx, noOrden)
		})
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*FullDetail), nil
	}
}
