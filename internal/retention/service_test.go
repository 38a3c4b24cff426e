package retention

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryOrder struct {
	noOrden    string
	pedido     string
	estado     string
	completada *time.Time
	eliminada  bool
}

type memoryRepo struct {
	orders []*memoryOrder
	pagos  map[string]int64 // pedido -> payment rows
}

func (m *memoryRepo) SweepCompleted(_ context.Context, cutoff time.Time) (int64, error) {
	var swept int64
	for _, o := range m.orders {
		if o.estado == "Completada" && !o.eliminada && o.completada != nil && o.completada.Before(cutoff) {
			o.eliminada = true
			swept++
		}
	}
	return swept, nil
}

func (m *memoryRepo) PurgeOrders(_ context.Context, cutoff time.Time) (*PurgeReport, error) {
	report := &PurgeReport{Cutoff: cutoff, StageRows: map[string]int64{}}
	pedidos := map[string]struct{}{}
	var kept []*memoryOrder
	for _, o := range m.orders {
		if o.estado == "Completada" && o.completada != nil && o.completada.Before(cutoff) {
			report.OrdersPurged++
			pedidos[o.pedido] = struct{}{}
			continue
		}
		kept = append(kept, o)
	}
	m.orders = kept
	for pedido := range pedidos {
		survives := false
		for _, o := range m.orders {
			if o.pedido == pedido {
				survives = true
				break
			}
		}
		if survives {
			continue
		}
		report.PagosPurged += m.pagos[pedido]
		delete(m.pagos, pedido)
		report.PedidosPurged++
	}
	return report, nil
}

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n)
	return &t
}

func TestSweepCompletedOnlyOldOrders(t *testing.T) {
	repo := &memoryRepo{orders: []*memoryOrder{
		{noOrden: "OP-001", pedido: "P-001", estado: "Completada", completada: daysAgo(10)},
		{noOrden: "OP-002", pedido: "P-001", estado: "Completada", completada: daysAgo(2)},
		{noOrden: "OP-003", pedido: "P-002", estado: "Abierta"},
	}}
	svc := NewService(slog.Default(), repo, nil)

	swept, err := svc.SweepCompleted(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), swept)
	require.True(t, repo.orders[0].eliminada)
	require.False(t, repo.orders[1].eliminada)
	require.False(t, repo.orders[2].eliminada)
}

func TestSweepRejectsInvalidWindow(t *testing.T) {
	svc := NewService(slog.Default(), &memoryRepo{}, nil)
	_, err := svc.SweepCompleted(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidWindow)
	_, err = svc.PurgeOrders(context.Background(), -1)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestPurgeSparesPedidosWithLiveOrders(t *testing.T) {
	repo := &memoryRepo{
		orders: []*memoryOrder{
			{noOrden: "OP-001", pedido: "P-001", estado: "Completada", completada: daysAgo(30)},
			{noOrden: "OP-002", pedido: "P-001", estado: "Abierta"},
			{noOrden: "OP-003", pedido: "P-002", estado: "Completada", completada: daysAgo(30)},
		},
		pagos: map[string]int64{"P-001": 2, "P-002": 1},
	}
	svc := NewService(slog.Default(), repo, nil)

	report, err := svc.PurgeOrders(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(2), report.OrdersPurged)

	// Pedido 1 still has OP-002 in flight, so it and its pagos survive.
	require.Equal(t, int64(1), report.PedidosPurged)
	require.Equal(t, int64(1), report.PagosPurged)
	require.Contains(t, repo.pagos, "P-001")
	require.NotContains(t, repo.pagos, "P-002")
}
