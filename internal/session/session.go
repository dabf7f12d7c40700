// Package session holds the state of one import cycle: file selection, validation,
// operator review and the batch upload.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workforce-ai/roster-import/internal/importer"
)

// State is a step of the import flow.
type State string

const (
	StateIdle             State = "idle"
	StateFileSelected     State = "file_selected"
	StateValidating       State = "validating"
	StateValidationFailed State = "validation_failed"
	StateReadyToUpload    State = "ready_to_upload"
	StateUploading        State = "uploading"
	StateUploadSucceeded  State = "upload_succeeded"
	StateUploadFailed     State = "upload_failed"
)

// Busy reports whether a validation or upload is in flight.
func (s State) Busy() bool {
	return s == StateValidating || s == StateUploading
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNothingToUpload   = errors.New("no valid rows to upload")
)

// TransitionError describes a rejected state change.
type TransitionError struct {
	From   State
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Failure codes recorded on a session.
const (
	FailureFileEmpty      = "FILE_EMPTY"
	FailureMissingHeaders = "MISSING_HEADERS"
	FailureUnreadableFile = "UNREADABLE_FILE"
	FailureUpload         = "UPLOAD_FAILED"
)

// Failure is the reason a session ended in ValidationFailed or UploadFailed.
// Message is shown to the operator as-is.
type Failure struct {
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	MissingHeaders []string `json:"missing_headers,omitempty"`
}

// Session is one operator's import cycle. Methods only move State along the
// allowed transitions and never perform I/O.
type Session struct {
	ID            uuid.UUID              `json:"import_id"`
	OperatorID    uuid.UUID              `json:"operator_id"`
	State         State                  `json:"state"`
	Filename      string                 `json:"filename,omitempty"`
	Report        *importer.ImportReport `json:"report,omitempty"`
	Failure       *Failure               `json:"failure,omitempty"`
	UploadedCount int                    `json:"uploaded_count"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// New returns an idle session.
func New(id, operatorID uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:         id,
		OperatorID: operatorID,
		State:      StateIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SelectFile starts a new cycle for filename, discarding any previous report.
// It is refused while a validation or upload is in flight.
func (s *Session) SelectFile(filename string) error {
	if s.State.Busy() {
		return &TransitionError{From: s.State, Action: "select a file"}
	}
	s.State = StateFileSelected
	s.Filename = filename
	s.Report = nil
	s.Failure = nil
	s.UploadedCount = 0
	return nil
}

// BeginValidation moves a selected file into validation.
func (s *Session) BeginValidation() error {
	if s.State != StateFileSelected {
		return &TransitionError{From: s.State, Action: "start validation"}
	}
	s.State = StateValidating
	return nil
}

// CompleteValidation records the outcome of a pipeline run. A non-nil err marks the
// file as rejected; otherwise the report becomes available for review.
func (s *Session) CompleteValidation(report *importer.ImportReport, err error) error {
	if s.State != StateValidating {
		return &TransitionError{From: s.State, Action: "complete validation"}
	}
	if err != nil {
		s.State = StateValidationFailed
		s.Report = nil
		s.Failure = validationFailure(err)
		return nil
	}
	s.State = StateReadyToUpload
	s.Report = report
	s.Failure = nil
	return nil
}

// BeginUpload hands out the validated batch. It is allowed after a successful
// validation and after a failed upload, in which case the same batch is re-sent.
func (s *Session) BeginUpload() ([]importer.ValidatedUser, error) {
	if s.State != StateReadyToUpload && s.State != StateUploadFailed {
		return nil, &TransitionError{From: s.State, Action: "upload"}
	}
	if s.Report == nil || len(s.Report.ValidUsers) == 0 {
		return nil, ErrNothingToUpload
	}
	s.State = StateUploading
	s.Failure = nil
	return s.Report.ValidUsers, nil
}

// CompleteUpload records the uploader's result. Success clears the report;
// failure keeps it so the operator can retry without re-validating.
func (s *Session) CompleteUpload(err error) error {
	if s.State != StateUploading {
		return &TransitionError{From: s.State, Action: "complete upload"}
	}
	if err != nil {
		s.State = StateUploadFailed
		s.Failure = &Failure{Code: FailureUpload, Message: err.Error()}
		return nil
	}
	s.State = StateUploadSucceeded
	s.UploadedCount = len(s.Report.ValidUsers)
	s.Report = nil
	s.Failure = nil
	return nil
}

// CanSubmit reports whether the upload action should be offered.
func (s *Session) CanSubmit() bool {
	return (s.State == StateReadyToUpload || s.State == StateUploadFailed) &&
		s.Report != nil && len(s.Report.ValidUsers) > 0
}

func validationFailure(err error) *Failure {
	var empty *importer.FileEmptyError
	var headers *importer.MissingHeadersError
	switch {
	case errors.As(err, &empty):
		return &Failure{Code: FailureFileEmpty, Message: err.Error()}
	case errors.As(err, &headers):
		return &Failure{Code: FailureMissingHeaders, Message: err.Error(), MissingHeaders: headers.Missing}
	default:
		return &Failure{Code: FailureUnreadableFile, Message: err.Error()}
	}
}
