package production

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	folio      int64
	orders     map[string]*Order
	lastCreate *CreateRequest
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[string]*Order{}}
}

func (m *memoryRepo) Create(_ context.Context, req CreateRequest) (string, error) {
	m.lastCreate = &req
	m.folio++
	code := FormatCode(m.folio)
	estado := req.Estado
	if estado == "" {
		estado = EstadoAbierta
	}
	created := time.Now()
	if req.Fecha != nil {
		created = *req.Fecha
	}
	m.orders[code] = &Order{
		NoOrden:               code,
		NoPedidoID:            req.NoPedidoID,
		ProductoIdentificador: req.ProductoIdentificador,
		EstadoDetallado:       estado,
		FechaCreacion:         created,
	}
	return code, nil
}

func (m *memoryRepo) Get(_ context.Context, noOrden string) (Order, error) {
	o, ok := m.orders[noOrden]
	if !ok || o.Eliminada {
		return Order{}, fmt.Errorf("%s: %w", noOrden, ErrNotFound)
	}
	return *o, nil
}

func (m *memoryRepo) Lookup(_ context.Context, noPedido, producto string) (LookupResult, error) {
	for _, o := range m.orders {
		if o.NoPedidoID == noPedido && o.ProductoIdentificador == producto && !o.Eliminada {
			return LookupResult{Exists: true, NoOrden: o.NoOrden}, nil
		}
	}
	return LookupResult{}, nil
}

func (m *memoryRepo) Complete(_ context.Context, noOrden string) (Order, error) {
	o, ok := m.orders[noOrden]
	if !ok || o.Eliminada {
		return Order{}, fmt.Errorf("%s: %w", noOrden, ErrNotFound)
	}
	now := time.Now()
	o.EstadoDetallado = EstadoCompletada
	o.FechaCompletada = &now
	return *o, nil
}

func (m *memoryRepo) FullDetail(_ context.Context, noOrden string) (*FullDetail, error) {
	o, ok := m.orders[noOrden]
	if !ok || o.Eliminada {
		return nil, fmt.Errorf("%s: %w", noOrden, ErrNotFound)
	}
	return &FullDetail{Order: *o, Stages: map[string]StageDetail{}}, nil
}

func TestServiceCreateAllocatesSequentialCodes(t *testing.T) {
	svc := NewService(slog.Default(), newMemoryRepo(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-010", ProductoIdentificador: "CAJA-A"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-010", ProductoIdentificador: "CAJA-B"})
	require.NoError(t, err)

	require.Equal(t, "OP-001", first)
	require.Equal(t, "OP-002", second)
}

func TestServiceCompleteStampsOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)
	ctx := context.Background()

	code, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-004", ProductoIdentificador: "CAJA-A"})
	require.NoError(t, err)

	order, err := svc.Complete(ctx, code)
	require.NoError(t, err)
	require.Equal(t, EstadoCompletada, order.EstadoDetallado)
	require.NotNil(t, order.FechaCompletada)

	// Re-completing re-stamps rather than failing.
	again, err := svc.Complete(ctx, code)
	require.NoError(t, err)
	require.Equal(t, EstadoCompletada, again.EstadoDetallado)
}

func TestServiceCompleteUnknownOrder(t *testing.T) {
	svc := NewService(slog.Default(), newMemoryRepo(), nil)
	_, err := svc.Complete(context.Background(), "OP-404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceLookup(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)
	ctx := context.Background()

	code, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-007", ProductoIdentificador: "CAJA-C"})
	require.NoError(t, err)

	found, err := svc.Lookup(ctx, "P-007", "CAJA-C")
	require.NoError(t, err)
	require.True(t, found.Exists)
	require.Equal(t, code, found.NoOrden)

	missing, err := svc.Lookup(ctx, "P-007", "CAJA-X")
	require.NoError(t, err)
	require.False(t, missing.Exists)

	// Deleted orders are invisible to the probe.
	repo.orders[code].Eliminada = true
	gone, err := svc.Lookup(ctx, "P-007", "CAJA-C")
	require.NoError(t, err)
	require.False(t, gone.Exists)
}

func TestSweptOrdersInvisibleToDetailQueries(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)
	ctx := context.Background()

	code, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-012", ProductoIdentificador: "CAJA-E"})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, code)
	require.NoError(t, err)

	// The retention sweep flips the flag; detail reads must then miss.
	repo.orders[code].Eliminada = true

	_, err = svc.Get(ctx, code)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.FullDetail(ctx, code)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceFullDetailUsesSingleflight(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)
	ctx := context.Background()

	code, err := svc.Create(ctx, CreateRequest{NoPedidoID: "P-009", ProductoIdentificador: "CAJA-D"})
	require.NoError(t, err)

	detail, err := svc.FullDetail(ctx, code)
	require.NoError(t, err)
	require.Equal(t, code, detail.Order.NoOrden)
}
