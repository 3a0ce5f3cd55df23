package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"dummyapi/internal/dummy/models"
	txcontext "dummyapi/pkg/platform/tx"
)

// Constraint names declared in migrations/001_create_dummies.up.sql.
const (
	constraintDNI   = "dummies_dni_key"
	constraintEmail = "dummies_email_key"
)

const dummyColumns = `id, name, dni, email, tel, fecha_nac`

// PostgresStore persists records in the dummies table. It joins a *sql.Tx
// carried in the context when one is present.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// dummyRow mirrors one row of the dummies table.
type dummyRow struct {
	ID        int64
	Name      string
	DNI       sql.NullInt64
	Email     sql.NullString
	Tel       sql.NullInt64
	BirthDate sql.NullTime
}

func toRow(d *models.Dummy) dummyRow {
	row := dummyRow{ID: int64(d.ID), Name: d.Name}
	if d.NationalID != nil {
		row.DNI = sql.NullInt64{Int64: *d.NationalID, Valid: true}
	}
	if d.Email != nil {
		row.Email = sql.NullString{String: *d.Email, Valid: true}
	}
	if d.Phone != nil {
		row.Tel = sql.NullInt64{Int64: *d.Phone, Valid: true}
	}
	if d.BirthDate != nil {
		row.BirthDate = sql.NullTime{Time: d.BirthDate.Time(), Valid: true}
	}
	return row
}

func fromRow(row dummyRow) *models.Dummy {
	d := &models.Dummy{ID: models.DummyID(row.ID), Name: row.Name}
	if row.DNI.Valid {
		v := row.DNI.Int64
		d.NationalID = &v
	}
	if row.Email.Valid {
		v := row.Email.String
		d.Email = &v
	}
	if row.Tel.Valid {
		v := row.Tel.Int64
		d.Phone = &v
	}
	if row.BirthDate.Valid {
		v := models.DateOf(row.BirthDate.Time.In(time.UTC))
		d.BirthDate = &v
	}
	return d
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDummy(sc rowScanner) (*models.Dummy, error) {
	var row dummyRow
	if err := sc.Scan(&row.ID, &row.Name, &row.DNI, &row.Email, &row.Tel, &row.BirthDate); err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id models.DummyID) (*models.Dummy, error) {
	query := `SELECT ` + dummyColumns + ` FROM dummies WHERE id = $1`
	d, err := scanDummy(s.execer(ctx).QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find dummy by id: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.Dummy, error) {
	query := `SELECT ` + dummyColumns + ` FROM dummies ORDER BY id`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list dummies: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Dummy, 0)
	for rows.Next() {
		d, err := scanDummy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dummy: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dummies: %w", err)
	}
	return out, nil
}

// Save updates the row with d.ID when it exists and inserts a new row
// (database-assigned id) otherwise.
func (s *PostgresStore) Save(ctx context.Context, d *models.Dummy) (*models.Dummy, error) {
	if err := requireRecord(d); err != nil {
		return nil, err
	}
	row := toRow(d)
	db := s.execer(ctx)

	if row.ID != 0 {
		update := `
			UPDATE dummies
			SET name = $2, dni = $3, email = $4, tel = $5, fecha_nac = $6
			WHERE id = $1
			RETURNING ` + dummyColumns
		saved, err := scanDummy(db.QueryRowContext(ctx, update,
			row.ID, row.Name, row.DNI, row.Email, row.Tel, row.BirthDate))
		switch {
		case err == nil:
			return saved, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, translateWriteErr(err, d, "update dummy")
		}
	}

	insert := `
		INSERT INTO dummies (name, dni, email, tel, fecha_nac)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + dummyColumns
	saved, err := scanDummy(db.QueryRowContext(ctx, insert,
		row.Name, row.DNI, row.Email, row.Tel, row.BirthDate))
	if err != nil {
		return nil, translateWriteErr(err, d, "insert dummy")
	}
	return saved, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id models.DummyID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM dummies WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete dummy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dummy rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM dummies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count dummies: %w", err)
	}
	return count, nil
}

func translateWriteErr(err error, d *models.Dummy, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case constraintDNI:
			if d.NationalID != nil {
				return nationalIDUsed(*d.NationalID)
			}
		case constraintEmail:
			if d.Email != nil {
				return emailUsed(*d.Email)
			}
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
