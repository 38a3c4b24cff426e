package retention

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
)

// stageTable pairs a stage table with its serial id column, in the order the
// deep sweep deletes them.
type stageTable struct {
	table    string
	idColumn string
}

var stageTables = []stageTable{
	{"proceso_recepcion", "id_proceso_recepcion"},
	{"proceso_impresion", "id_proceso_impresion"},
	{"proceso_suaje", "id_proceso_suaje"},
	{"proceso_pegado", "id_pegado"},
	{"proceso_armado", "idproceso_armado"},
	{"proceso_almacen", "id_proceso_almacen"},
	{"proceso_calidad", "idproceso_calidad"},
	{"proceso_envio", "id_proceso_envio"},
}

var linkColumns = []string{
	"proceso_recepcion_id", "proceso_impresion_id", "proceso_suaje_id", "proceso_pegado_id",
	"proceso_armado_id", "proceso_almacen_id", "proceso_calidad_id", "proceso_envio_id",
}

// Repository runs the two sweeps against Postgres.
type Repository interface {
	// SweepCompleted flips eliminada on completed orders older than cutoff
	// and reports how many rows it touched.
	SweepCompleted(ctx context.Context, cutoff time.Time) (int64, error)
	// PurgeOrders removes completed orders older than cutoff together with
	// their stage rows, then removes every pedido left without a live
	// production order. All of it happens in one transaction.
	PurgeOrders(ctx context.Context, cutoff time.Time) (*PurgeReport, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) SweepCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orden_produccion
		 SET eliminada = true
		 WHERE estado_detallado = 'Completada'
		   AND fecha_completada < $1
		   AND eliminada = false`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention: soft sweep: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) PurgeOrders(ctx context.Context, cutoff time.Time) (*PurgeReport, error) {
	report := &PurgeReport{Cutoff: cutoff, StageRows: make(map[string]int64, len(stageTables))}

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(
			`SELECT no_orden, no_pedido_id, %s
			 FROM orden_produccion
			 WHERE estado_detallado = 'Completada' AND fecha_completada < $1`,
			strings.Join(linkColumns, ", ")), cutoff)
		if err != nil {
			return fmt.Errorf("select qualifying: %w", err)
		}

		var (
			codes    []string
			pedidos  = map[string]struct{}{}
			stageIDs = make([][]int64, len(stageTables))
		)
		for rows.Next() {
			var (
				code   string
				pedido string
			)
			links := make([]*int64, len(stageTables))
			dest := []any{&code, &pedido}
			for i := range links {
				dest = append(dest, &links[i])
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return fmt.Errorf("scan qualifying: %w", err)
			}
			codes = append(codes, code)
			pedidos[pedido] = struct{}{}
			for i, link := range links {
				if link != nil {
					stageIDs[i] = append(stageIDs[i], *link)
				}
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate qualifying: %w", err)
		}
		if len(codes) == 0 {
			return nil
		}

		// Orders go first so the stage rows are no longer referenced.
		tag, err := tx.Exec(ctx, `DELETE FROM orden_produccion WHERE no_orden = ANY($1)`, codes)
		if err != nil {
			return fmt.Errorf("delete ordenes: %w", err)
		}
		report.OrdersPurged = tag.RowsAffected()

		for i, st := range stageTables {
			if len(stageIDs[i]) == 0 {
				report.StageRows[st.table] = 0
				continue
			}
			tag, err := tx.Exec(ctx, fmt.Sprintf(
				"DELETE FROM %s WHERE %s = ANY($1)", st.table, st.idColumn), stageIDs[i])
			if err != nil {
				return fmt.Errorf("delete %s: %w", st.table, err)
			}
			report.StageRows[st.table] = tag.RowsAffected()
		}

		for pedido := range pedidos {
			var remaining int64
			err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM orden_produccion
				 WHERE no_pedido_id = $1 AND eliminada = false`, pedido).Scan(&remaining)
			if err != nil {
				return fmt.Errorf("count remaining for pedido %s: %w", pedido, err)
			}
			if remaining > 0 {
				continue
			}
			tag, err := tx.Exec(ctx, `DELETE FROM pagos WHERE no_pedido = $1`, pedido)
			if err != nil {
				return fmt.Errorf("delete pagos for pedido %s: %w", pedido, err)
			}
			report.PagosPurged += tag.RowsAffected()
			if _, err := tx.Exec(ctx, `DELETE FROM orden_compra WHERE no_pedido = $1`, pedido); err != nil {
				return fmt.Errorf("delete orden_compra for pedido %s: %w", pedido, err)
			}
			if _, err := tx.Exec(ctx, `DELETE FROM pedido_detalle WHERE id_pedido = $1`, pedido); err != nil {
				return fmt.Errorf("delete pedido_detalle for pedido %s: %w", pedido, err)
			}
			tag, err = tx.Exec(ctx, `DELETE FROM pedidos WHERE no_pedido = $1`, pedido)
			if err != nil {
				return fmt.Errorf("delete pedido %s: %w", pedido, err)
			}
			report.PedidosPurged += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retention: deep sweep: %w", err)
	}
	return report, nil
}
