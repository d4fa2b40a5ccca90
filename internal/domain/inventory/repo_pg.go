package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/dentora/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const stockCols = `id, name, reference, quantity, threshold, unit_price, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *StockItem) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO stock_item (id, name, reference, quantity, threshold, unit_price)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.Name, s.Reference, s.Quantity, s.Threshold, s.UnitPrice,
	)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+stockCols+` FROM stock_item WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *StockItem) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE stock_item SET
			name=$2, reference=$3, quantity=$4, threshold=$5, unit_price=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Reference, s.Quantity, s.Threshold, s.UnitPrice,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM stock_item WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM stock_item`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stockCols+` FROM stock_item ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectItems(rows)
	return items, total, err
}

func (r *repoPG) ListLowStock(ctx context.Context) ([]*StockItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stockCols+` FROM stock_item WHERE quantity <= threshold ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *repoPG) ReplaceAll(ctx context.Context, items []*StockItem) error {
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(txCtx, `DELETE FROM stock_item`); err != nil {
		return err
	}
	for _, s := range items {
		s.ID = uuid.New()
		if _, err := tx.Exec(txCtx, `
			INSERT INTO stock_item (id, name, reference, quantity, threshold, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			s.ID, s.Name, s.Reference, s.Quantity, s.Threshold, s.UnitPrice,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanItem(row pgx.Row) (*StockItem, error) {
	var s StockItem
	if err := row.Scan(
		&s.ID, &s.Name, &s.Reference, &s.Quantity, &s.Threshold, &s.UnitPrice,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func collectItems(rows pgx.Rows) ([]*StockItem, error) {
	var out []*StockItem
	for rows.Next() {
		s, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
