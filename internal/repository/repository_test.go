package repository

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforce-ai/roster-import/internal/db"
	"github.com/workforce-ai/roster-import/internal/models"
)

// testPool connects to TEST_DATABASE_URL and applies migrations. Tests are
// skipped when it is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.RunMigrations(ctx, pool))
	return pool
}

func newSession(operatorID uuid.UUID) *models.ImportSession {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.ImportSession{
		ID:         uuid.New(),
		OperatorID: operatorID,
		State:      "idle",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestImportRepository_CreateGetUpdate(t *testing.T) {
	pool := testPool(t)
	repo := NewImportRepository(pool)
	ctx := context.Background()
	operatorID := uuid.New()

	s := newSession(operatorID)
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, operatorID, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "idle", got.State)
	assert.Nil(t, got.Report)

	s.State = "ready_to_upload"
	s.Filename = "roster.csv"
	s.Report = json.RawMessage(`{"total_rows":1}`)
	require.NoError(t, repo.UpdateState(ctx, s, "idle"))

	got, err = repo.GetByID(ctx, operatorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ready_to_upload", got.State)
	assert.Equal(t, "roster.csv", got.Filename)
	assert.JSONEq(t, `{"total_rows":1}`, string(got.Report))
}

func TestImportRepository_UpdateStateRejectsStaleState(t *testing.T) {
	pool := testPool(t)
	repo := NewImportRepository(pool)
	ctx := context.Background()

	s := newSession(uuid.New())
	require.NoError(t, repo.Create(ctx, s))

	s.State = "file_selected"
	err := repo.UpdateState(ctx, s, "uploading")

	assert.ErrorIs(t, err, ErrStaleState)
}

func TestImportRepository_ScopedToOperator(t *testing.T) {
	pool := testPool(t)
	repo := NewImportRepository(pool)
	ctx := context.Background()

	s := newSession(uuid.New())
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, uuid.New(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := repo.ListByOperator(ctx, s.OperatorID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].ID)
}

func TestLearnerRepository_InsertBatchIsAtomic(t *testing.T) {
	pool := testPool(t)
	repo := NewLearnerRepository(pool)
	ctx := context.Background()
	batchID := uuid.New()
	school := "GGS"

	good := models.Learner{
		ID: uuid.New(), BatchID: batchID, UID: "U1", Name: "Ayesha", Gender: "F",
		PhoneNumber: "+923001234567", SchoolName: &school, Role: "Student",
		TargetGroup: "Grade 6", CohortAssignment: "C1", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.InsertBatch(ctx, []models.Learner{good}))

	n, err := repo.CountByBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Second batch reuses a primary key, so nothing from it is kept.
	failingBatch := uuid.New()
	fresh := good
	fresh.ID = uuid.New()
	fresh.BatchID = failingBatch
	clash := good
	clash.BatchID = failingBatch
	err = repo.InsertBatch(ctx, []models.Learner{fresh, clash})
	require.Error(t, err)

	n, err = repo.CountByBatch(ctx, failingBatch)
	require.NoError(t, err)
	assert.Zero(t, n)

	learners, err := repo.GetByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, learners, 1)
	assert.Equal(t, "GGS", *learners[0].SchoolName)
}

func TestIdempotencyRepository_ClaimReleaseClean(t *testing.T) {
	pool := testPool(t)
	repo := NewIdempotencyRepository(pool)
	ctx := context.Background()
	operatorID := uuid.New()
	resourceID := uuid.New()

	first, err := repo.Claim(ctx, operatorID, "key-1", "import_upload", resourceID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExists)

	second, err := repo.Claim(ctx, operatorID, "key-1", "import_upload", uuid.New())
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists)
	assert.Equal(t, resourceID, second.ResourceID)

	require.NoError(t, repo.Release(ctx, operatorID, "key-1", "import_upload"))
	third, err := repo.Claim(ctx, operatorID, "key-1", "import_upload", resourceID)
	require.NoError(t, err)
	assert.False(t, third.AlreadyExists)

	_, err = repo.Claim(ctx, operatorID, "", "import_upload", resourceID)
	assert.Error(t, err)

	_, err = pool.Exec(ctx, `UPDATE idempotency_keys SET expires_at = NOW() - INTERVAL '1 hour' WHERE operator_id = $1`, operatorID)
	require.NoError(t, err)
	removed, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
}
