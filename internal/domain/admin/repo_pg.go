package admin

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

const staffCols = `id, name, email, roles, is_active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, u *StaffUser) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_user (id, name, email, roles, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.Roles, u.IsActive,
	)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff_user WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*StaffUser, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff_user WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, u *StaffUser) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_user SET
			name=$2, email=$3, roles=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Roles, u.IsActive,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_user WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*StaffUser, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff_user ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StaffUser
	for rows.Next() {
		u, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanStaff(row pgx.Row) (*StaffUser, error) {
	var u StaffUser
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Roles, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
