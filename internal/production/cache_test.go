package production

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*DetailCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDetailCache(client, time.Minute), mr
}

func TestDetailCacheFetchPopulatesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (*FullDetail, error) {
		loads++
		return &FullDetail{
			Order:    Order{NoOrden: "OP-007", EstadoDetallado: EstadoAbierta},
			Producto: "CAJA-12x12",
			Stages:   map[string]StageDetail{},
		}, nil
	}

	first, err := cache.Fetch(ctx, "OP-007", loader)
	require.NoError(t, err)
	require.Equal(t, "OP-007", first.Order.NoOrden)

	second, err := cache.Fetch(ctx, "OP-007", loader)
	require.NoError(t, err)
	require.Equal(t, first.Producto, second.Producto)
	require.Equal(t, 1, loads)
}

func TestDetailCacheInvalidateEvictsOnlyThatOrder(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	loader := func(code string) func(context.Context) (*FullDetail, error) {
		return func(context.Context) (*FullDetail, error) {
			return &FullDetail{Order: Order{NoOrden: code}}, nil
		}
	}
	_, err := cache.Fetch(ctx, "OP-001", loader("OP-001"))
	require.NoError(t, err)
	_, err = cache.Fetch(ctx, "OP-002", loader("OP-002"))
	require.NoError(t, err)

	require.NoError(t, cache.InvalidateDetail(ctx, "OP-001"))
	require.False(t, mr.Exists("production:detail:OP-001"))
	require.True(t, mr.Exists("production:detail:OP-002"))
}

func TestDetailCacheNilClientFallsThrough(t *testing.T) {
	var cache *DetailCache
	detail, err := cache.Fetch(context.Background(), "OP-003", func(context.Context) (*FullDetail, error) {
		return &FullDetail{Order: Order{NoOrden: "OP-003"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "OP-003", detail.Order.NoOrden)
	require.NoError(t, cache.InvalidateDetail(context.Background(), "OP-003"))
}
