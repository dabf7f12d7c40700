// Package imports runs the operator-facing import workflow: a session is created,
// a file is selected and validated, and the validated batch is uploaded once the
// operator confirms. Every state change is persisted before the next step starts.
package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/ingest"
	"github.com/workforce-ai/roster-import/internal/models"
	"github.com/workforce-ai/roster-import/internal/repository"
	"github.com/workforce-ai/roster-import/internal/session"
	"github.com/workforce-ai/roster-import/internal/uploader"
)

var (
	// ErrNotFound is returned when the operator has no session with the given id.
	ErrNotFound = errors.New("import session not found")
	// ErrConcurrentUpdate is returned when another request moved the session first.
	ErrConcurrentUpdate = errors.New("import session was modified by another request")
)

// Store persists import sessions. Implemented by repository.ImportRepository.
type Store interface {
	Create(ctx context.Context, s *models.ImportSession) error
	GetByID(ctx context.Context, operatorID, id uuid.UUID) (*models.ImportSession, error)
	UpdateState(ctx context.Context, s *models.ImportSession, expected string) error
	ListByOperator(ctx context.Context, operatorID uuid.UUID, limit int) ([]models.ImportSession, error)
}

// Service coordinates ingest, validation and upload for import sessions.
type Service struct {
	store    Store
	uploader uploader.Uploader
	opts     importer.Options
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates an import service.
func NewService(store Store, up uploader.Uploader, opts importer.Options) *Service {
	return &Service{
		store:    store,
		uploader: up,
		opts:     opts,
		now:      time.Now,
		logger:   slog.Default().With(slog.String("service", "import-workflow")),
	}
}

// Create starts an idle session for the operator.
func (s *Service) Create(ctx context.Context, operatorID uuid.UUID) (*session.Session, error) {
	sess := session.New(uuid.New(), operatorID, s.now().UTC())

	rec, err := toRecord(sess)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create import session: %w", err)
	}

	s.sessionLogger(sess).Info("import session created")
	return sess, nil
}

// Get loads one of the operator's sessions.
func (s *Service) Get(ctx context.Context, operatorID, id uuid.UUID) (*session.Session, error) {
	rec, err := s.store.GetByID(ctx, operatorID, id)
	if err != nil {
		return nil, fmt.Errorf("get import session: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return fromRecord(rec)
}

// List returns the operator's most recent sessions, newest first.
func (s *Service) List(ctx context.Context, operatorID uuid.UUID, limit int) ([]*session.Session, error) {
	recs, err := s.store.ListByOperator(ctx, operatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import sessions: %w", err)
	}
	out := make([]*session.Session, 0, len(recs))
	for i := range recs {
		sess, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// SelectFile attaches a file to the session and validates it. File-level problems
// (empty file, missing columns, unreadable content) leave the session in
// ValidationFailed and are not returned as errors; the returned error covers
// refused transitions and persistence failures.
func (s *Service) SelectFile(ctx context.Context, operatorID, id uuid.UUID, filename string, r io.Reader) (*session.Session, error) {
	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	sess, err := s.Get(ctx, operatorID, id)
	if err != nil {
		return nil, err
	}
	logger := s.sessionLogger(sess).With(slog.String("filename", filename))

	// Step a: select the file and enter validation
	stepLogger := logger.With(slog.String("step", "begin_validation"))
	prev := sess.State
	if err := sess.SelectFile(filename); err != nil {
		stepLogger.Warn("file selection refused", slog.String("error", err.Error()))
		return nil, err
	}
	if err := sess.BeginValidation(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess, prev); err != nil {
		stepLogger.Error("failed to persist validation start", slog.String("error", err.Error()))
		return nil, err
	}

	// Step b: parse and validate
	stepLogger = logger.With(slog.String("step", "validate"))
	start := s.now()
	report, runErr := s.validate(ctx, r, format)
	if runErr != nil {
		stepLogger.Warn("file rejected", slog.String("error", runErr.Error()))
	} else {
		stepLogger.Info("file validated",
			slog.Int("total_rows", report.TotalRows),
			slog.Int("valid_rows", report.ValidCount()),
			slog.Int("skipped_rows", report.SkippedRows),
			slog.Int("duplicate_uid_count", report.DuplicateUIDCount),
			slog.Int("invalid_phone_count", report.InvalidPhoneCount),
			slog.Int64("duration_ms", s.now().Sub(start).Milliseconds()),
		)
	}

	// Step c: record the outcome, even if the request was cancelled meanwhile
	stepLogger = logger.With(slog.String("step", "complete_validation"))
	if err := sess.CompleteValidation(report, runErr); err != nil {
		return nil, err
	}
	if err := s.save(context.WithoutCancel(ctx), sess, session.StateValidating); err != nil {
		stepLogger.Error("failed to persist validation result", slog.String("error", err.Error()))
		return nil, err
	}

	return sess, nil
}

// Submit uploads the validated batch in a single call. An upload the backend
// rejects leaves the session in UploadFailed with the backend's message and the
// report intact; it is not returned as an error.
func (s *Service) Submit(ctx context.Context, operatorID, id uuid.UUID) (*session.Session, error) {
	sess, err := s.Get(ctx, operatorID, id)
	if err != nil {
		return nil, err
	}
	logger := s.sessionLogger(sess)

	// Step a: enter uploading
	stepLogger := logger.With(slog.String("step", "begin_upload"))
	prev := sess.State
	users, err := sess.BeginUpload()
	if err != nil {
		stepLogger.Warn("upload refused", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.save(ctx, sess, prev); err != nil {
		stepLogger.Error("failed to persist upload start", slog.String("error", err.Error()))
		return nil, err
	}

	// Step b: send the batch
	stepLogger = logger.With(slog.String("step", "upload"), slog.Int("batch_size", len(users)))
	start := s.now()
	uploadErr := s.uploader.Upload(ctx, users)
	if uploadErr != nil {
		stepLogger.Error("batch upload failed",
			slog.String("error", uploadErr.Error()),
			slog.Int64("duration_ms", s.now().Sub(start).Milliseconds()),
		)
	} else {
		stepLogger.Info("batch uploaded",
			slog.Int64("duration_ms", s.now().Sub(start).Milliseconds()),
		)
	}

	// Step c: record the outcome
	stepLogger = logger.With(slog.String("step", "complete_upload"))
	if err := sess.CompleteUpload(uploadErr); err != nil {
		return nil, err
	}
	if err := s.save(context.WithoutCancel(ctx), sess, session.StateUploading); err != nil {
		stepLogger.Error("failed to persist upload result", slog.String("error", err.Error()))
		return nil, err
	}

	return sess, nil
}

func (s *Service) validate(ctx context.Context, r io.Reader, format ingest.Format) (*importer.ImportReport, error) {
	rows, err := ingest.Parse(r, format)
	if err != nil {
		return nil, err
	}
	return importer.RunWithOptions(ctx, rows, s.opts)
}

func (s *Service) save(ctx context.Context, sess *session.Session, expected session.State) error {
	sess.UpdatedAt = s.now().UTC()
	rec, err := toRecord(sess)
	if err != nil {
		return err
	}
	if err := s.store.UpdateState(ctx, rec, string(expected)); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("update import session: %w", err)
	}
	return nil
}

func (s *Service) sessionLogger(sess *session.Session) *slog.Logger {
	return s.logger.With(
		slog.String("import_id", sess.ID.String()),
		slog.String("operator_id", sess.OperatorID.String()),
	)
}

func toRecord(sess *session.Session) (*models.ImportSession, error) {
	rec := &models.ImportSession{
		ID:            sess.ID,
		OperatorID:    sess.OperatorID,
		Filename:      sess.Filename,
		State:         string(sess.State),
		UploadedCount: sess.UploadedCount,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
	if sess.Report != nil {
		b, err := json.Marshal(sess.Report)
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		rec.Report = b
	}
	if sess.Failure != nil {
		b, err := json.Marshal(sess.Failure)
		if err != nil {
			return nil, fmt.Errorf("encode failure: %w", err)
		}
		rec.Failure = b
	}
	return rec, nil
}

func fromRecord(rec *models.ImportSession) (*session.Session, error) {
	sess := &session.Session{
		ID:            rec.ID,
		OperatorID:    rec.OperatorID,
		State:         session.State(rec.State),
		Filename:      rec.Filename,
		UploadedCount: rec.UploadedCount,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
	if len(rec.Report) > 0 && string(rec.Report) != "null" {
		sess.Report = &importer.ImportReport{}
		if err := json.Unmarshal(rec.Report, sess.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	if len(rec.Failure) > 0 && string(rec.Failure) != "null" {
		sess.Failure = &session.Failure{}
		if err := json.Unmarshal(rec.Failure, sess.Failure); err != nil {
			return nil, fmt.Errorf("decode failure: %w", err)
		}
	}
	return sess, nil
}
