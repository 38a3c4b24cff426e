package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
)

// Repository provides persistence for pedidos and their lines.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, o Order) (string, error)
	InsertLine(ctx context.Context, line OrderLine) error
	InsertAnticipo(ctx context.Context, noPedido string, fecha time.Time, monto float64, metodo, forma string) error
	Get(ctx context.Context, noPedido string) (*Order, error)
	UpdateStatus(ctx context.Context, noPedido string, status Status) error
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

// NewRepository constructs a pedido repository over the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Create(ctx context.Context, o Order) (string, error) {
	const query = `
		INSERT INTO pedidos (
			num_cliente, fecha, observaciones, subtotal, iva, total,
			entrega, condiciones_pago, status, numero_identificacion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING no_pedido`

	var noPedido string
	err := r.db.QueryRow(ctx, query,
		o.NumCliente,
		o.Fecha,
		o.Observaciones,
		o.Subtotal,
		o.IVA,
		o.Total,
		o.Entrega,
		o.CondicionesPago,
		o.Status,
		o.NumeroIdentificacion,
	).Scan(&noPedido)
	if err != nil {
		return "", err
	}
	return noPedido, nil
}

func (r *repository) InsertLine(ctx context.Context, line OrderLine) error {
	const query = `
		INSERT INTO pedido_detalle (id_pedido, id_producto, cantidad, importe)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, line.IDPedido, line.IDProducto, line.Cantidad, line.Importe)
	return err
}

func (r *repository) InsertAnticipo(ctx context.Context, noPedido string, fecha time.Time, monto float64, metodo, forma string) error {
	const query = `
		INSERT INTO pagos (no_pedido, fecha_pago, monto, metodo_pago, forma_pago)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, noPedido, fecha, monto, metodo, forma)
	return err
}

func (r *repository) Get(ctx context.Context, noPedido string) (*Order, error) {
	const query = `
		SELECT no_pedido, num_cliente, fecha, observaciones, subtotal, iva, total,
		       entrega, condiciones_pago, status, numero_identificacion
		FROM pedidos
		WHERE no_pedido = $1`

	var o Order
	err := r.db.QueryRow(ctx, query, noPedido).Scan(
		&o.NoPedido, &o.NumCliente, &o.Fecha, &o.Observaciones,
		&o.Subtotal, &o.IVA, &o.Total,
		&o.Entrega, &o.CondicionesPago, &o.Status, &o.NumeroIdentificacion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const lineQuery = `
		SELECT id_pedido, id_producto, cantidad, importe
		FROM pedido_detalle
		WHERE id_pedido = $1
		ORDER BY id_producto`
	rows, err := r.db.Query(ctx, lineQuery, noPedido)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.IDPedido, &line.IDProducto, &line.Cantidad, &line.Importe); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, noPedido string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE pedidos SET status = $1 WHERE no_pedido = $2`, status, noPedido)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
