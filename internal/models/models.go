package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ImportSession is the persisted state of one operator's import cycle.
// DB columns: id, operator_id, filename, state, report, failure, uploaded_count,
//
//	created_at, updated_at
type ImportSession struct {
	ID            uuid.UUID       `json:"import_id"`
	OperatorID    uuid.UUID       `json:"operator_id"`
	Filename      string          `json:"filename"`
	State         string          `json:"state"`
	Report        json.RawMessage `json:"report,omitempty"`
	Failure       json.RawMessage `json:"failure,omitempty"`
	UploadedCount int             `json:"uploaded_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Learner is one uploaded learner/teacher record.
// DB columns: id, batch_id, uid, name, gender, phone_number, school_name, role,
//
//	target_group, cohort_assignment, created_at
type Learner struct {
	ID               uuid.UUID `json:"id"`
	BatchID          uuid.UUID `json:"batch_id"`
	UID              string    `json:"uid"`
	Name             string    `json:"name"`
	Gender           string    `json:"gender"`
	PhoneNumber      string    `json:"phone_number"`
	SchoolName       *string   `json:"school_name,omitempty"`
	Role             string    `json:"role"`
	TargetGroup      string    `json:"target_group"`
	CohortAssignment string    `json:"cohort_assignment"`
	CreatedAt        time.Time `json:"created_at"`
}
