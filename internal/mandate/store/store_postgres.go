package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	txcontext "mandate/pkg/platform/tx"
)

const (
	uniqueViolation     = "23505"
	referenceConstraint = "mandates_reference_number_key"
)

const mandateColumns = `id, reference_number, status, last_name, first_name, function, email, phone, constituency, extra,
		admin_approver_id, super_admin_approver_id, rejected_by_id,
		admin_approved_at, super_admin_approved_at, rejected_at, rejection_reason,
		pdf_issued, pdf_issued_at, created_at, updated_at`

// PostgresStore persists mandates in PostgreSQL. Writes join the
// transaction carried in ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed mandate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, m models.Mandate) error {
	extra, err := marshalExtra(m.Submitter.Extra)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO mandates (` + mandateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID),
		m.ReferenceNumber,
		string(m.Status),
		m.Submitter.LastName,
		m.Submitter.FirstName,
		m.Submitter.Function,
		m.Submitter.Email,
		m.Submitter.Phone,
		m.Submitter.Constituency,
		extra,
		staffIDArg(m.AdminApproverID),
		staffIDArg(m.SuperAdminApproverID),
		staffIDArg(m.RejectedByID),
		m.AdminApprovedAt,
		m.SuperAdminApprovedAt,
		m.RejectedAt,
		m.RejectionReason,
		m.PdfIssued,
		m.PdfIssuedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == referenceConstraint {
				return sentinel.ErrAlreadyUsed
			}
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert mandate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, mandateID id.MandateID) (models.Mandate, error) {
	query := `SELECT ` + mandateColumns + ` FROM mandates WHERE id = $1`
	m, err := scanMandate(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(mandateID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Mandate{}, sentinel.ErrNotFound
		}
		return models.Mandate{}, fmt.Errorf("find mandate by id: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) FindByReference(ctx context.Context, reference string) (models.Mandate, error) {
	query := `SELECT ` + mandateColumns + ` FROM mandates WHERE reference_number = $1`
	m, err := scanMandate(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Mandate{}, sentinel.ErrNotFound
		}
		return models.Mandate{}, fmt.Errorf("find mandate by reference: %w", err)
	}
	return m, nil
}

// UpdateIfStatus writes m only while the row still holds expected. The
// reference number and creation time are never rewritten.
func (s *PostgresStore) UpdateIfStatus(ctx context.Context, m models.Mandate, expected models.Status) error {
	extra, err := marshalExtra(m.Submitter.Extra)
	if err != nil {
		return err
	}
	query := `
		UPDATE mandates SET
			status = $3,
			last_name = $4,
			first_name = $5,
			function = $6,
			email = $7,
			phone = $8,
			constituency = $9,
			extra = $10,
			admin_approver_id = $11,
			super_admin_approver_id = $12,
			rejected_by_id = $13,
			admin_approved_at = $14,
			super_admin_approved_at = $15,
			rejected_at = $16,
			rejection_reason = $17,
			pdf_issued = $18,
			pdf_issued_at = $19,
			updated_at = $20
		WHERE id = $1 AND status = $2
	`
	conn := txcontext.Conn(ctx, s.db)
	result, err := conn.ExecContext(ctx, query,
		uuid.UUID(m.ID),
		string(expected),
		string(m.Status),
		m.Submitter.LastName,
		m.Submitter.FirstName,
		m.Submitter.Function,
		m.Submitter.Email,
		m.Submitter.Phone,
		m.Submitter.Constituency,
		extra,
		staffIDArg(m.AdminApproverID),
		staffIDArg(m.SuperAdminApproverID),
		staffIDArg(m.RejectedByID),
		m.AdminApprovedAt,
		m.SuperAdminApprovedAt,
		m.RejectedAt,
		m.RejectionReason,
		m.PdfIssued,
		m.PdfIssuedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update mandate: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mandate rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM mandates WHERE id = $1)`, uuid.UUID(m.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check mandate exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// List returns mandates newest first. An empty status filter matches all.
func (s *PostgresStore) List(ctx context.Context, filter models.Filter) (models.Page, error) {
	filter.Normalize()
	var statuses []string
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	search := strings.TrimSpace(filter.Search)
	if search != "" {
		search = "%" + escapeLike(search) + "%"
	}

	where := `
		WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
		  AND ($2 = '' OR reference_number ILIKE $2 OR last_name ILIKE $2 OR first_name ILIKE $2
		       OR email ILIKE $2 OR constituency ILIKE $2)
	`
	conn := txcontext.Conn(ctx, s.db)
	statusArg := pq.Array(nonNil(statuses))

	var total int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM mandates`+where, statusArg, search).Scan(&total); err != nil {
		return models.Page{}, fmt.Errorf("count mandates: %w", err)
	}

	query := `SELECT ` + mandateColumns + ` FROM mandates` + where + `
		ORDER BY created_at DESC, reference_number ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := conn.QueryContext(ctx, query, statusArg, search, filter.Limit, filter.Offset)
	if err != nil {
		return models.Page{}, fmt.Errorf("list mandates: %w", err)
	}
	defer rows.Close()

	page := models.Page{Total: total, Items: []models.Mandate{}}
	for rows.Next() {
		m, err := scanMandate(rows)
		if err != nil {
			return models.Page{}, fmt.Errorf("scan mandate: %w", err)
		}
		page.Items = append(page.Items, m)
	}
	if err := rows.Err(); err != nil {
		return models.Page{}, fmt.Errorf("iterate mandates: %w", err)
	}
	return page, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, `SELECT status, COUNT(*) FROM mandates GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count mandates by status: %w", err)
	}
	defer rows.Close()

	counts := make(models.StatusCounts, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMandate(row rowScanner) (models.Mandate, error) {
	var (
		m                    models.Mandate
		mandateID            uuid.UUID
		status               string
		extra                []byte
		adminApprover        uuid.NullUUID
		superAdminApprover   uuid.NullUUID
		rejectedBy           uuid.NullUUID
		adminApprovedAt      sql.NullTime
		superAdminApprovedAt sql.NullTime
		rejectedAt           sql.NullTime
		pdfIssuedAt          sql.NullTime
	)
	err := row.Scan(
		&mandateID,
		&m.ReferenceNumber,
		&status,
		&m.Submitter.LastName,
		&m.Submitter.FirstName,
		&m.Submitter.Function,
		&m.Submitter.Email,
		&m.Submitter.Phone,
		&m.Submitter.Constituency,
		&extra,
		&adminApprover,
		&superAdminApprover,
		&rejectedBy,
		&adminApprovedAt,
		&superAdminApprovedAt,
		&rejectedAt,
		&m.RejectionReason,
		&m.PdfIssued,
		&pdfIssuedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.Mandate{}, err
	}
	m.ID = id.MandateID(mandateID)
	m.Status = models.Status(status)
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &m.Submitter.Extra); err != nil {
			return models.Mandate{}, fmt.Errorf("unmarshal submitter extra: %w", err)
		}
		if len(m.Submitter.Extra) == 0 {
			m.Submitter.Extra = nil
		}
	}
	m.AdminApproverID = staffIDFromNull(adminApprover)
	m.SuperAdminApproverID = staffIDFromNull(superAdminApprover)
	m.RejectedByID = staffIDFromNull(rejectedBy)
	m.AdminApprovedAt = timeFromNull(adminApprovedAt)
	m.SuperAdminApprovedAt = timeFromNull(superAdminApprovedAt)
	m.RejectedAt = timeFromNull(rejectedAt)
	m.PdfIssuedAt = timeFromNull(pdfIssuedAt)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func marshalExtra(extra map[string]string) ([]byte, error) {
	if extra == nil {
		extra = map[string]string{}
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("marshal submitter extra: %w", err)
	}
	return b, nil
}

func staffIDArg(staffID *id.StaffID) any {
	if staffID == nil {
		return nil
	}
	return uuid.UUID(*staffID)
}

func staffIDFromNull(v uuid.NullUUID) *id.StaffID {
	if !v.Valid {
		return nil
	}
	staffID := id.StaffID(v.UUID)
	return &staffID
}

func timeFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
