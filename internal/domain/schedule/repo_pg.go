package schedule

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

const apptCols = `id, title, service_type, starts_at, ends_at, patient_id, doctor_id, status, notes, created_at, updated_at`

func (r *repoPG) CreateAppointment(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, title, service_type, starts_at, ends_at, patient_id, doctor_id, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.Title, a.ServiceType, a.StartsAt, a.EndsAt, a.PatientID, a.DoctorID, a.Status, a.Notes,
	)
	return err
}

func (r *repoPG) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			title=$2, service_type=$3, starts_at=$4, ends_at=$5, patient_id=$6, doctor_id=$7,
			status=$8, notes=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Title, a.ServiceType, a.StartsAt, a.EndsAt, a.PatientID, a.DoctorID, a.Status, a.Notes,
	)
	return err
}

func (r *repoPG) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment ORDER BY starts_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	appts, err := collectAppts(rows)
	return appts, total, err
}

func (r *repoPG) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY starts_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	appts, err := collectAppts(rows)
	return appts, total, err
}

func (r *repoPG) ListAppointmentsBetween(ctx context.Context, from, to time.Time, doctorID *uuid.UUID) ([]*Appointment, error) {
	var rows pgx.Rows
	var err error
	if doctorID != nil {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+apptCols+` FROM appointment
			 WHERE starts_at < $2 AND ends_at > $1 AND doctor_id = $3
			 ORDER BY starts_at`, from, to, *doctorID)
	} else {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+apptCols+` FROM appointment
			 WHERE starts_at < $2 AND ends_at > $1
			 ORDER BY starts_at`, from, to)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *repoPG) CountOverlapping(ctx context.Context, doctorID uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (int, error) {
	var count int
	var err error
	if excludeID != nil {
		err = r.conn(ctx).QueryRow(ctx, `
			SELECT COUNT(*) FROM appointment
			WHERE doctor_id = $1 AND starts_at < $3 AND ends_at > $2 AND id <> $4`,
			doctorID, startsAt, endsAt, *excludeID).Scan(&count)
	} else {
		err = r.conn(ctx).QueryRow(ctx, `
			SELECT COUNT(*) FROM appointment
			WHERE doctor_id = $1 AND starts_at < $3 AND ends_at > $2`,
			doctorID, startsAt, endsAt).Scan(&count)
	}
	return count, err
}

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Title, &a.ServiceType, &a.StartsAt, &a.EndsAt,
		&a.PatientID, &a.DoctorID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppts(rows pgx.Rows) ([]*Appointment, error) {
	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Title, &a.ServiceType, &a.StartsAt, &a.EndsAt,
			&a.PatientID, &a.DoctorID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, &a)
	}
	return appts, rows.Err()
}

const windowCols = `id, doctor_id, day_of_week, start_minute, end_minute, color, created_at`

func (r *repoPG) CreateWindow(ctx context.Context, w *AvailabilityWindow) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO availability_window (id, doctor_id, day_of_week, start_minute, end_minute, color)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		w.ID, w.DoctorID, w.DayOfWeek, w.StartMinute, w.EndMinute, w.Color,
	)
	return err
}

func (r *repoPG) UpdateWindow(ctx context.Context, w *AvailabilityWindow) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE availability_window SET day_of_week=$2, start_minute=$3, end_minute=$4, color=$5
		WHERE id = $1`,
		w.ID, w.DayOfWeek, w.StartMinute, w.EndMinute, w.Color,
	)
	return err
}

func (r *repoPG) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM availability_window WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListWindows(ctx context.Context, doctorID *uuid.UUID) ([]*AvailabilityWindow, error) {
	var rows pgx.Rows
	var err error
	if doctorID != nil {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+windowCols+` FROM availability_window WHERE doctor_id = $1 ORDER BY day_of_week, start_minute`,
			*doctorID)
	} else {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+windowCols+` FROM availability_window ORDER BY day_of_week, start_minute`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []*AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.DoctorID, &w.DayOfWeek, &w.StartMinute, &w.EndMinute, &w.Color, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, &w)
	}
	return windows, rows.Err()
}

const closureCols = `id, type, title, starts_at, ends_at, created_at`

func (r *repoPG) CreateClosure(ctx context.Context, cl *PracticeClosure) error {
	cl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO practice_closure (id, type, title, starts_at, ends_at)
		VALUES ($1,$2,$3,$4,$5)`,
		cl.ID, cl.Type, cl.Title, cl.StartsAt, cl.EndsAt,
	)
	return err
}

func (r *repoPG) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM practice_closure WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListClosures(ctx context.Context) ([]*PracticeClosure, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+closureCols+` FROM practice_closure ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClosures(rows)
}

func (r *repoPG) ListClosuresBetween(ctx context.Context, from, to time.Time) ([]*PracticeClosure, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+closureCols+` FROM practice_closure WHERE starts_at < $2 AND ends_at > $1 ORDER BY starts_at`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClosures(rows)
}

func collectClosures(rows pgx.Rows) ([]*PracticeClosure, error) {
	var closures []*PracticeClosure
	for rows.Next() {
		var cl PracticeClosure
		if err := rows.Scan(&cl.ID, &cl.Type, &cl.Title, &cl.StartsAt, &cl.EndsAt, &cl.CreatedAt); err != nil {
			return nil, err
		}
		closures = append(closures, &cl)
	}
	return closures, rows.Err()
}

func (r *repoPG) CreateWeeklyClosure(ctx context.Context, wc *PracticeWeeklyClosure) error {
	wc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO practice_weekly_closure (id, day_of_week, title, is_active)
		VALUES ($1,$2,$3,$4)`,
		wc.ID, wc.DayOfWeek, wc.Title, wc.IsActive,
	)
	return err
}

func (r *repoPG) UpdateWeeklyClosure(ctx context.Context, wc *PracticeWeeklyClosure) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE practice_weekly_closure SET day_of_week=$2, title=$3, is_active=$4
		WHERE id = $1`,
		wc.ID, wc.DayOfWeek, wc.Title, wc.IsActive,
	)
	return err
}

func (r *repoPG) DeleteWeeklyClosure(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM practice_weekly_closure WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListWeeklyClosures(ctx context.Context) ([]*PracticeWeeklyClosure, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, day_of_week, title, is_active, created_at FROM practice_weekly_closure ORDER BY day_of_week`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wcs []*PracticeWeeklyClosure
	for rows.Next() {
		var wc PracticeWeeklyClosure
		if err := rows.Scan(&wc.ID, &wc.DayOfWeek, &wc.Title, &wc.IsActive, &wc.CreatedAt); err != nil {
			return nil, err
		}
		wcs = append(wcs, &wc)
	}
	return wcs, rows.Err()
}
