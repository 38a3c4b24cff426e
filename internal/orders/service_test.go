package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	seq    int
	orders map[string]*Order
	pagos  map[string][]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[string]*Order{}, pagos: map[string][]float64{}}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) Create(_ context.Context, o Order) (string, error) {
	m.seq++
	o.NoPedido = fmt.Sprintf("P-%03d", m.seq)
	m.orders[o.NoPedido] = &o
	return o.NoPedido, nil
}

func (m *memoryRepo) InsertLine(_ context.Context, line OrderLine) error {
	o, ok := m.orders[line.IDPedido]
	if !ok {
		return ErrNotFound
	}
	o.Lines = append(o.Lines, line)
	return nil
}

func (m *memoryRepo) InsertAnticipo(_ context.Context, noPedido string, _ time.Time, monto float64, _, _ string) error {
	m.pagos[noPedido] = append(m.pagos[noPedido], monto)
	return nil
}

func (m *memoryRepo) Get(_ context.Context, noPedido string) (*Order, error) {
	o, ok := m.orders[noPedido]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, noPedido string, status Status) error {
	o, ok := m.orders[noPedido]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func TestCreateComputesTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		NumCliente: "C-042",
		Productos: []CreateOrderLineReq{
			{IDProducto: "CAJA-A", Cantidad: 100, Importe: 600},
			{IDProducto: "CAJA-B", Cantidad: 50, Importe: 400},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "P-001", order.NoPedido)
	require.Equal(t, StatusPendiente, order.Status)
	require.InDelta(t, 1000.0, order.Subtotal, 1e-9)
	require.InDelta(t, 160.0, order.IVA, 1e-9)
	require.InDelta(t, 1160.0, order.Total, 1e-9)
	require.Len(t, order.Lines, 2)
}

func TestCreateRecordsAnticipo(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		NumCliente: "C-001",
		Anticipo:   250,
		Productos:  []CreateOrderLineReq{{IDProducto: "CAJA-A", Cantidad: 10, Importe: 500}},
	})
	require.NoError(t, err)
	require.Equal(t, []float64{250}, repo.pagos[order.NoPedido])
}

func TestCreateRejectsEmptyLines(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateOrderRequest{NumCliente: "C-001"})
	require.ErrorIs(t, err, ErrEmptyLines)
}

func TestCancel(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		NumCliente: "C-002",
		Productos:  []CreateOrderLineReq{{IDProducto: "CAJA-A", Cantidad: 10, Importe: 500}},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), order.NoPedido)
	require.NoError(t, err)
	require.Equal(t, StatusCancelado, cancelled.Status)

	_, err = svc.Cancel(context.Background(), "P-999")
	require.ErrorIs(t, err, ErrNotFound)
}
