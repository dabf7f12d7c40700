// Package uploader sends a validated batch to the backend in a single call.
package uploader

import (
	"context"

	"github.com/workforce-ai/roster-import/internal/importer"
)

// Uploader submits the complete batch at once. There is no partial success: the
// call either stores every user or none of them.
type Uploader interface {
	Upload(ctx context.Context, users []importer.ValidatedUser) error
}

// RejectedError is returned when the backend answers with anything but 200.
// Error returns the backend's own message unchanged.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return e.Message
}
