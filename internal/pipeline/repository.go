package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
)

// Repository persists stage records and links them to production orders.
type Repository interface {
	// InsertStage writes the stage row and, when noOrden is non-empty,
	// points the order at it. Both writes happen in one transaction: an
	// unknown order leaves no orphan stage row behind.
	InsertStage(ctx context.Context, rec Record, noOrden string) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) InsertStage(ctx context.Context, rec Record, noOrden string) (int64, error) {
	spec, ok := stageSpecs[rec.Type]
	if !ok {
		return 0, fmt.Errorf("pipeline: %w: %q", ErrUnknownStage, rec.Type)
	}

	placeholders := make([]string, len(rec.Columns))
	for i := range rec.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		spec.table, strings.Join(rec.Columns, ", "), strings.Join(placeholders, ", "), spec.idColumn,
	)

	var id int64
	if noOrden == "" {
		if err := r.pool.QueryRow(ctx, insert, rec.Values...).Scan(&id); err != nil {
			return 0, fmt.Errorf("pipeline: insert %s: %w", spec.table, err)
		}
		return id, nil
	}

	link := fmt.Sprintf("UPDATE orden_produccion SET %s = $1 WHERE no_orden = $2", spec.linkColumn)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insert, rec.Values...).Scan(&id); err != nil {
			return fmt.Errorf("insert %s: %w", spec.table, err)
		}
		tag, err := tx.Exec(ctx, link, id, noOrden)
		if err != nil {
			return fmt.Errorf("link %s to %s: %w", spec.table, noOrden, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("link %s: %w", noOrden, ErrOrderNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pipeline: %w", err)
	}
	return id, nil
}
