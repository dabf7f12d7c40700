package importstest

import (
	"context"
	"sync"

	"github.com/workforce-ai/roster-import/internal/importer"
)

// Uploader records every batch it is given and fails with Err when set.
type Uploader struct {
	mu      sync.Mutex
	Err     error
	Batches [][]importer.ValidatedUser
}

func (u *Uploader) Upload(_ context.Context, users []importer.ValidatedUser) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Batches = append(u.Batches, append([]importer.ValidatedUser(nil), users...))
	return u.Err
}

// Calls returns how many uploads were attempted.
func (u *Uploader) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Batches)
}
