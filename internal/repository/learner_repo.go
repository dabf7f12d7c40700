package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workforce-ai/roster-import/internal/models"
)

// LearnerRepository handles data access for uploaded learner records
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(pool *pgxpool.Pool) *LearnerRepository {
	return &LearnerRepository{pool: pool}
}

// InsertBatch inserts every learner in one transaction. Either the whole batch is
// stored or none of it is.
func (r *LearnerRepository) InsertBatch(ctx context.Context, learners []models.Learner) error {
	if len(learners) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}

	query := `
		INSERT INTO learners (
			id, batch_id, uid, name, gender, phone_number, school_name,
			role, target_group, cohort_assignment, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	for _, l := range learners {
		batch.Queue(
			query,
			l.ID,
			l.BatchID,
			l.UID,
			l.Name,
			l.Gender,
			l.PhoneNumber,
			l.SchoolName,
			l.Role,
			l.TargetGroup,
			l.CohortAssignment,
			l.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(learners); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert learner %q: %w", learners[i].UID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByBatch retrieves all learners inserted by one upload
func (r *LearnerRepository) GetByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Learner, error) {
	query := `
		SELECT id, batch_id, uid, name, gender, phone_number, school_name,
		       role, target_group, cohort_assignment, created_at
		FROM learners
		WHERE batch_id = $1
		ORDER BY created_at ASC, uid ASC
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		l := models.Learner{}
		err := rows.Scan(
			&l.ID,
			&l.BatchID,
			&l.UID,
			&l.Name,
			&l.Gender,
			&l.PhoneNumber,
			&l.SchoolName,
			&l.Role,
			&l.TargetGroup,
			&l.CohortAssignment,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return learners, nil
}

// CountByBatch returns the number of learners inserted by one upload
func (r *LearnerRepository) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM learners WHERE batch_id = $1`, batchID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
