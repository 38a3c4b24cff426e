package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID  int64
	records []Record
	links   map[string]map[string]int64 // no_orden -> link column -> stage id
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, links: map[string]map[string]int64{}}
}

func (m *memoryRepo) InsertStage(_ context.Context, rec Record, noOrden string) (int64, error) {
	spec := stageSpecs[rec.Type]
	if noOrden != "" {
		if _, ok := m.links[noOrden]; !ok {
			return 0, fmt.Errorf("link %s: %w", noOrden, ErrOrderNotFound)
		}
	}
	id := m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	if noOrden != "" {
		m.links[noOrden][spec.linkColumn] = id
	}
	return id, nil
}

type memoryInvalidator struct {
	dropped []string
}

func (m *memoryInvalidator) InvalidateDetail(_ context.Context, noOrden string) error {
	m.dropped = append(m.dropped, noOrden)
	return nil
}

func TestRecordStageLinksOrder(t *testing.T) {
	repo := newMemoryRepo()
	repo.links["OP-004"] = map[string]int64{}
	inv := &memoryInvalidator{}
	svc := NewService(slog.Default(), repo, inv)

	id, err := svc.RecordStage(context.Background(), &AlmacenInput{
		Cantidad: 240,
		Tarimas:  []string{"1/120", "2/120"},
		NoOrden:  "OP-004",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Equal(t, int64(1), repo.links["OP-004"]["proceso_almacen_id"])
	require.Equal(t, []string{"OP-004"}, inv.dropped)

	rec := repo.records[0]
	require.Equal(t, StageAlmacen, rec.Type)
	require.Contains(t, rec.Values, "1/120, 2/120")
}

func TestRecordStageUnknownOrder(t *testing.T) {
	svc := NewService(slog.Default(), newMemoryRepo(), nil)

	_, err := svc.RecordStage(context.Background(), &RecepcionInput{
		CantidadRecibida: 100,
		NoOrden:          "OP-999",
	})
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRecordStageUnattached(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)

	id, err := svc.RecordStage(context.Background(), &EnvioInput{
		Operador:   "R. Salas",
		TotalEnvio: 500,
		Vehiculo:   "T-12",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Empty(t, repo.links)
}

func TestRecordStageArmadoRequiresQuantities(t *testing.T) {
	svc := NewService(slog.Default(), newMemoryRepo(), nil)

	_, err := svc.RecordStage(context.Background(), &ArmadoInput{
		CantidadArmado: 100,
	})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestRecordStagePegadoDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil)

	_, err := svc.RecordStage(context.Background(), &PegadoInput{CantidadPegado: 50})
	require.NoError(t, err)

	rec := repo.records[0]
	got := map[string]any{}
	for i, col := range rec.Columns {
		got[col] = rec.Values[i]
	}
	require.Equal(t, "no", got["autorizacion_pegado"])
	require.Equal(t, "no", got["firma_operador"])
	require.Equal(t, "completado", got["estado"])
}
