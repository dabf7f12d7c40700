package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/models"
)

// LearnerStore persists a batch atomically.
type LearnerStore interface {
	InsertBatch(ctx context.Context, learners []models.Learner) error
}

// PostgresUploader writes the batch straight into the learners table. It is used
// when no backend endpoint is configured.
type PostgresUploader struct {
	store LearnerStore
	now   func() time.Time
}

// NewPostgresUploader creates an uploader backed by store.
func NewPostgresUploader(store LearnerStore) *PostgresUploader {
	return &PostgresUploader{store: store, now: time.Now}
}

// Upload stores every user under a fresh batch id in a single transaction.
func (u *PostgresUploader) Upload(ctx context.Context, users []importer.ValidatedUser) error {
	batchID := uuid.New()
	now := u.now()

	learners := make([]models.Learner, len(users))
	for i, user := range users {
		var school *string
		if user.SchoolName != "" {
			s := user.SchoolName
			school = &s
		}
		learners[i] = models.Learner{
			ID:               uuid.New(),
			BatchID:          batchID,
			UID:              user.UID,
			Name:             user.Name,
			Gender:           user.Gender,
			PhoneNumber:      user.PhoneNumber,
			SchoolName:       school,
			Role:             user.Role,
			TargetGroup:      user.TargetGroup,
			CohortAssignment: user.CohortAssignment,
			CreatedAt:        now,
		}
	}

	if err := u.store.InsertBatch(ctx, learners); err != nil {
		return fmt.Errorf("store batch: %w", err)
	}

	slog.Info("batch stored",
		"batch_id", batchID.String(),
		"batch_size", len(learners),
	)
	return nil
}
