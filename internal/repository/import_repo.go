package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workforce-ai/roster-import/internal/models"
)

// ErrStaleState is returned when a session was moved to another state by a
// concurrent request between load and update.
var ErrStaleState = errors.New("import session state changed concurrently")

// ImportRepository handles data access for import sessions
type ImportRepository struct {
	pool *pgxpool.Pool
}

// NewImportRepository creates a new import session repository
func NewImportRepository(pool *pgxpool.Pool) *ImportRepository {
	return &ImportRepository{pool: pool}
}

// importColumns is the canonical column list for import_sessions, used across all queries.
const importColumns = `id, operator_id, filename, state, report, failure,
	uploaded_count, created_at, updated_at`

// scanImport scans a row into an ImportSession struct using the canonical column order.
func scanImport(row pgx.Row, s *models.ImportSession) error {
	return row.Scan(
		&s.ID,
		&s.OperatorID,
		&s.Filename,
		&s.State,
		&s.Report,
		&s.Failure,
		&s.UploadedCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// Create inserts a new import session
func (r *ImportRepository) Create(ctx context.Context, s *models.ImportSession) error {
	if s == nil {
		return errors.New("import session cannot be nil")
	}

	query := `
		INSERT INTO import_sessions (
			id, operator_id, filename, state, report, failure,
			uploaded_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING ` + importColumns

	return scanImport(r.pool.QueryRow(
		ctx, query,
		s.ID, s.OperatorID, s.Filename, s.State, nullJSON(s.Report), nullJSON(s.Failure),
		s.UploadedCount, s.CreatedAt, s.UpdatedAt,
	), s)
}

// GetByID retrieves an import session by ID, scoped to the operator
func (r *ImportRepository) GetByID(ctx context.Context, operatorID, id uuid.UUID) (*models.ImportSession, error) {
	query := `SELECT ` + importColumns + ` FROM import_sessions WHERE id = $1 AND operator_id = $2`
	s := &models.ImportSession{}
	err := scanImport(r.pool.QueryRow(ctx, query, id, operatorID), s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// UpdateState writes the session back only if its stored state is still expected.
// It returns ErrStaleState otherwise.
func (r *ImportRepository) UpdateState(ctx context.Context, s *models.ImportSession, expected string) error {
	if s == nil {
		return errors.New("import session cannot be nil")
	}

	query := `
		UPDATE import_sessions
		SET filename = $4, state = $5, report = $6, failure = $7,
		    uploaded_count = $8, updated_at = $9
		WHERE id = $1 AND operator_id = $2 AND state = $3
		RETURNING ` + importColumns

	err := scanImport(r.pool.QueryRow(
		ctx, query,
		s.ID, s.OperatorID, expected,
		s.Filename, s.State, nullJSON(s.Report), nullJSON(s.Failure),
		s.UploadedCount, s.UpdatedAt,
	), s)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStaleState
		}
		return err
	}
	return nil
}

// ListByOperator returns the operator's most recent sessions, newest first
func (r *ImportRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID, limit int) ([]models.ImportSession, error) {
	query := `SELECT ` + importColumns + ` FROM import_sessions
		WHERE operator_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, operatorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ImportSession
	for rows.Next() {
		s := models.ImportSession{}
		if err := scanImport(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// nullJSON stores empty JSON as SQL NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
