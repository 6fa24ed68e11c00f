package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"mandate/internal/staff/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	txcontext "mandate/pkg/platform/tx"
)

const (
	uniqueViolation = "23505"
	emailConstraint = "staff_accounts_email_key"
)

const accountColumns = `id, email, first_name, last_name, role, password_hash, active, last_login_at, created_at, updated_at`

// PostgresStore persists staff accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a models.Account) error {
	query := `
		INSERT INTO staff_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(a.ID),
		a.Email,
		a.FirstName,
		a.LastName,
		string(a.Role),
		a.PasswordHash,
		a.Active,
		a.LastLoginAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == emailConstraint {
				return sentinel.ErrAlreadyUsed
			}
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert staff account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, staffID id.StaffID) (models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM staff_accounts WHERE id = $1`
	a, err := scanAccount(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(staffID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, sentinel.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("find staff by id: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM staff_accounts WHERE email = $1`
	a, err := scanAccount(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, sentinel.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("find staff by email: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) RecordLogin(ctx context.Context, staffID id.StaffID, at time.Time) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE staff_accounts SET last_login_at = $2, updated_at = $2 WHERE id = $1`,
		uuid.UUID(staffID), at,
	)
	if err != nil {
		return fmt.Errorf("record staff login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record staff login: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByRole(ctx context.Context, role id.Role) (int, error) {
	var n int
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff_accounts WHERE role = $1 AND active`, string(role),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count staff by role: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Account, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM staff_accounts ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		a         models.Account
		rawID     uuid.UUID
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&rawID,
		&a.Email,
		&a.FirstName,
		&a.LastName,
		&role,
		&a.PasswordHash,
		&a.Active,
		&lastLogin,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return models.Account{}, err
	}
	a.ID = id.StaffID(rawID)
	a.Role = id.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return a, nil
}
