package finance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
)

// Repository provides the reads and writes the reconciliation engine needs.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	GetOrderHeader(ctx context.Context, noPedido string) (*OrderHeader, error)
	LockOrderHeader(ctx context.Context, noPedido string) (*OrderHeader, error)
	ListLineQuantities(ctx context.Context, noPedido string) ([]LineQuantities, error)
	SumPayments(ctx context.Context, noPedido string) (float64, error)
	ListPayments(ctx context.Context, noPedido string) ([]Payment, error)
	InsertPayment(ctx context.Context, p Payment) (*Payment, error)
	SetOrderStatus(ctx context.Context, noPedido, status string) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the finance repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderHeaderColumns = `no_pedido, num_cliente, fecha, status, subtotal::numeric, iva::numeric, total::numeric`

func (r *repository) scanHeader(row pgx.Row) (*OrderHeader, error) {
	var h OrderHeader
	err := row.Scan(&h.NoPedido, &h.NumCliente, &h.Fecha, &h.Status, &h.Subtotal, &h.IVA, &h.Total)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) GetOrderHeader(ctx context.Context, noPedido string) (*OrderHeader, error) {
	query := `SELECT ` + orderHeaderColumns + ` FROM pedidos WHERE no_pedido = $1`
	return r.scanHeader(r.db.QueryRow(ctx, query, noPedido))
}

// LockOrderHeader reads the pedido with a row lock so that the
// check-then-insert payment validation cannot race a concurrent submission.
// Only meaningful inside WithTx.
func (r *repository) LockOrderHeader(ctx context.Context, noPedido string) (*OrderHeader, error) {
	query := `SELECT ` + orderHeaderColumns + ` FROM pedidos WHERE no_pedido = $1 FOR UPDATE`
	return r.scanHeader(r.db.QueryRow(ctx, query, noPedido))
}

// ListLineQuantities joins each pedido line to its non-deleted production
// order and that order's almacén record. Lines without a warehousing chain
// report quantity 0.
func (r *repository) ListLineQuantities(ctx context.Context, noPedido string) ([]LineQuantities, error) {
	const query = `
		SELECT
			d.id_producto,
			d.cantidad::numeric,
			d.importe::numeric,
			COALESCE(pa.cantidad::numeric, 0) AS cantidad_almacen
		FROM pedido_detalle d
		LEFT JOIN orden_produccion op ON op.no_pedido_id = d.id_pedido
			AND op.producto_identificador = d.id_producto
			AND op.eliminada = false
		LEFT JOIN proceso_almacen pa ON pa.id_proceso_almacen = op.proceso_almacen_id
		WHERE d.id_pedido = $1`

	rows, err := r.db.Query(ctx, query, noPedido)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineQuantities
	for rows.Next() {
		var l LineQuantities
		if err := rows.Scan(&l.IDProducto, &l.CantidadPedido, &l.Importe, &l.CantidadAlmacen); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) SumPayments(ctx context.Context, noPedido string) (float64, error) {
	const query = `SELECT COALESCE(SUM(monto::numeric), 0) FROM pagos WHERE no_pedido = $1`
	var total float64
	if err := r.db.QueryRow(ctx, query, noPedido).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ListPayments(ctx context.Context, noPedido string) ([]Payment, error) {
	const query = `
		SELECT id, no_pedido, fecha_pago, monto::numeric, metodo_pago, forma_pago
		FROM pagos
		WHERE no_pedido = $1
		ORDER BY fecha_pago, id`

	rows, err := r.db.Query(ctx, query, noPedido)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.NoPedido, &p.FechaPago, &p.Monto, &p.MetodoPago, &p.FormaPago); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) InsertPayment(ctx context.Context, p Payment) (*Payment, error) {
	const query = `
		INSERT INTO pagos (no_pedido, fecha_pago, monto, metodo_pago, forma_pago)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, p.NoPedido, p.FechaPago, p.Monto, p.MetodoPago, p.FormaPago).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SetOrderStatus(ctx context.Context, noPedido, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE pedidos SET status = $1 WHERE no_pedido = $2`, status, noPedido)
	return err
}
