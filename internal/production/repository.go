package production

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
)

// stageRef names a stage table as the order sees it: where the rows live and
// which orden_produccion column points at them.
type stageRef struct {
	name       string
	table      string
	idColumn   string
	linkColumn string
}

var stageRefs = []stageRef{
	{"recepcion", "proceso_recepcion", "id_proceso_recepcion", "proceso_recepcion_id"},
	{"impresion", "proceso_impresion", "id_proceso_impresion", "proceso_impresion_id"},
	{"suaje", "proceso_suaje", "id_proceso_suaje", "proceso_suaje_id"},
	{"pegado", "proceso_pegado", "id_pegado", "proceso_pegado_id"},
	{"armado", "proceso_armado", "idproceso_armado", "proceso_armado_id"},
	{"almacen", "proceso_almacen", "id_proceso_almacen", "proceso_almacen_id"},
	{"calidad", "proceso_calidad", "idproceso_calidad", "proceso_calidad_id"},
	{"envio", "proceso_envio", "id_proceso_envio", "proceso_envio_id"},
}

func linkColumnFor(name string) (string, bool) {
	for _, ref := range stageRefs {
		if ref.name == name || ref.linkColumn == name {
			return ref.linkColumn, true
		}
	}
	return "", false
}

// Repository persists production orders.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (string, error)
	Get(ctx context.Context, noOrden string) (Order, error)
	Lookup(ctx context.Context, noPedido, producto string) (LookupResult, error)
	Complete(ctx context.Context, noOrden string) (Order, error)
	FullDetail(ctx context.Context, noOrden string) (*FullDetail, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `no_orden, no_pedido_id, producto_identificador, estado_detallado,
	fecha_creacion, fecha_completada, eliminada`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.NoOrden, &o.NoPedidoID, &o.ProductoIdentificador, &o.EstadoDetallado,
		&o.FechaCreacion, &o.FechaCompletada, &o.Eliminada)
	return o, err
}

// Create allocates the next folio from orden_produccion_folio and inserts the
// order in the same transaction, so concurrent creates can never mint the
// same code.
func (r *repository) Create(ctx context.Context, req CreateRequest) (string, error) {
	var code string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var folio int64
		err := tx.QueryRow(ctx,
			`UPDATE orden_produccion_folio SET ultimo_folio = ultimo_folio + 1 RETURNING ultimo_folio`,
		).Scan(&folio)
		if err != nil {
			return fmt.Errorf("next folio: %w", err)
		}
		code = FormatCode(folio)

		estado := req.Estado
		if estado == "" {
			estado = EstadoAbierta
		}
		columns := []string{"no_orden", "no_pedido_id", "producto_identificador", "estado_detallado", "eliminada"}
		values := []any{code, req.NoPedidoID, req.ProductoIdentificador, estado, false}
		if req.Fecha != nil {
			columns = append(columns, "fecha_creacion")
			values = append(values, *req.Fecha)
		}
		for name, id := range req.StageIDs {
			col, ok := linkColumnFor(name)
			if !ok {
				return fmt.Errorf("unknown stage link %q", name)
			}
			columns = append(columns, col)
			values = append(values, id)
		}
		placeholders := make([]string, len(columns))
		for i := range columns {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"INSERT INTO orden_produccion (%s) VALUES (%s)",
			strings.Join(columns, ", "), strings.Join(placeholders, ", "),
		), values...)
		if err != nil {
			return fmt.Errorf("insert orden %s: %w", code, err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("production: create: %w", err)
	}
	return code, nil
}

// Get returns a live order. Swept orders read as missing, like every other
// aggregation query here.
func (r *repository) Get(ctx context.Context, noOrden string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orden_produccion WHERE no_orden = $1 AND eliminada = false`, noOrden))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("production: %s: %w", noOrden, ErrNotFound)
	}
	if err != nil {
		return Order{}, fmt.Errorf("production: get %s: %w", noOrden, err)
	}
	return o, nil
}

// Lookup reports whether a live order already covers the pedido line. Orders
// flagged eliminada stay invisible so the line can be re-ordered.
func (r *repository) Lookup(ctx context.Context, noPedido, producto string) (LookupResult, error) {
	var code string
	err := r.pool.QueryRow(ctx,
		`SELECT no_orden FROM orden_produccion
		 WHERE no_pedido_id = $1 AND producto_identificador = $2 AND eliminada = false
		 ORDER BY fecha_creacion DESC
		 LIMIT 1`, noPedido, producto).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return LookupResult{Exists: false}, nil
	}
	if err != nil {
		return LookupResult{}, fmt.Errorf("production: lookup %s/%s: %w", noPedido, producto, err)
	}
	return LookupResult{Exists: true, NoOrden: code}, nil
}

// Complete stamps the order Completada. Re-completing an already completed
// order just re-stamps fecha_completada.
func (r *repository) Complete(ctx context.Context, noOrden string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`UPDATE orden_produccion
		 SET estado_detallado = $1, fecha_completada = now()
		 WHERE no_orden = $2 AND eliminada = false
		 RETURNING `+orderColumns, EstadoCompletada, noOrden))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("production: %s: %w", noOrden, ErrNotFound)
	}
	if err != nil {
		return Order{}, fmt.Errorf("production: complete %s: %w", noOrden, err)
	}
	return o, nil
}

// FullDetail assembles the order header, its pedido line context and every
// recorded stage row.
func (r *repository) FullDetail(ctx context.Context, noOrden string) (*FullDetail, error) {
	links := make([]*int64, len(stageRefs))
	linkCols := make([]string, len(stageRefs))
	for i, ref := range stageRefs {
		linkCols[i] = "op." + ref.linkColumn
	}

	var (
		detail FullDetail
		o      Order
	)
	dest := []any{
		&o.NoOrden, &o.NoPedidoID, &o.ProductoIdentificador, &o.EstadoDetallado,
		&o.FechaCreacion, &o.FechaCompletada, &o.Eliminada,
		&detail.Producto, &detail.Cliente, &detail.Cantidad,
	}
	for i := range links {
		dest = append(dest, &links[i])
	}

	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT op.no_orden, op.no_pedido_id, op.producto_identificador, op.estado_detallado,
		        op.fecha_creacion, op.fecha_completada, op.eliminada,
		        COALESCE(pd.id_producto, op.producto_identificador),
		        COALESCE(p.num_cliente, ''),
		        COALESCE(pd.cantidad::numeric, 0),
		        %s
		 FROM orden_produccion op
		 LEFT JOIN pedidos p ON p.no_pedido = op.no_pedido_id
		 LEFT JOIN pedido_detalle pd
		        ON pd.id_pedido = op.no_pedido_id AND pd.id_producto = op.producto_identificador
		 WHERE op.no_orden = $1 AND op.eliminada = false`, strings.Join(linkCols, ", ")), noOrden).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("production: %s: %w", noOrden, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("production: full detail %s: %w", noOrden, err)
	}

	detail.Order = o
	detail.Stages = make(map[string]StageDetail, len(stageRefs))
	for i, ref := range stageRefs {
		if links[i] == nil {
			continue
		}
		rows, err := r.pool.Query(ctx, fmt.Sprintf(
			"SELECT * FROM %s WHERE %s = $1", ref.table, ref.idColumn), *links[i])
		if err != nil {
			return nil, fmt.Errorf("production: stage %s: %w", ref.name, err)
		}
		stage, err := pgx.CollectOneRow(rows, pgx.RowToMap)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("production: stage %s: %w", ref.name, err)
		}
		detail.Stages[ref.name] = stage
	}
	return &detail, nil
}
