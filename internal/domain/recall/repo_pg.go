package recall

import (
	"context"
	"time"

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

const recallCols = `id, patient_id, type, status, due_date, notes, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rc *Recall) error {
	rc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO recall (id, patient_id, type, status, due_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rc.ID, rc.PatientID, rc.Type, rc.Status, rc.DueDate, rc.Notes,
	)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Recall, error) {
	return scanRecall(r.conn(ctx).QueryRow(ctx, `SELECT `+recallCols+` FROM recall WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rc *Recall) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE recall SET
			patient_id=$2, type=$3, status=$4, due_date=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		rc.ID, rc.PatientID, rc.Type, rc.Status, rc.DueDate, rc.Notes,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM recall WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Recall, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM recall`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recallCols+` FROM recall ORDER BY due_date LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	recalls, err := collectRecalls(rows)
	return recalls, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Recall, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recallCols+` FROM recall WHERE patient_id = $1 ORDER BY due_date`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecalls(rows)
}

func (r *repoPG) ListDue(ctx context.Context, by time.Time) ([]*Recall, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recallCols+` FROM recall WHERE status = $1 AND due_date <= $2 ORDER BY due_date`,
		StatusPending, by)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecalls(rows)
}

func scanRecall(row pgx.Row) (*Recall, error) {
	var rc Recall
	if err := row.Scan(
		&rc.ID, &rc.PatientID, &rc.Type, &rc.Status, &rc.DueDate, &rc.Notes,
		&rc.CreatedAt, &rc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rc, nil
}

func collectRecalls(rows pgx.Rows) ([]*Recall, error) {
	var out []*Recall
	for rows.Next() {
		rc, err := scanRecall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
