package model

import (
	"time"
)

// JobStatus represents the current state of an ingestion job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether a job in this status accepts no further writes.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source types accepted by the connector. SourceTypeAPI is reserved for a
// future pipeline variant and is rejected at submission time.
const (
	SourceTypeCSV = "csv"
	SourceTypeAPI = "api"
)

// JobCreate is the descriptor a client submits to open a new job.
type JobCreate struct {
	SourceType   string         `bson:"source_type" json:"source_type" binding:"required"`
	SourceConfig map[string]any `bson:"source_config" json:"source_config" binding:"required"`
	Description  string         `bson:"description" json:"description"`
}

// StatusUpdate carries the optional fields that may be merged alongside a
// status transition. Nil fields are left untouched on the document.
type StatusUpdate struct {
	Error    *string
	Progress *float64
	Result   *IngestResult
}

// IngestResult is the aggregate outcome of one pipeline run.
type IngestResult struct {
	TotalRecords      int      `bson:"total_records" json:"total_records"`
	SuccessfulRecords int      `bson:"successful_records" json:"successful_records"`
	FailedRecords     int      `bson:"failed_records" json:"failed_records"`
	Errors            []string `bson:"errors" json:"errors"`
}

// Job tracks one ingestion run's status, progress, and outcome. Counters are
// pointers because they are unknown until the pipeline first reports them.
// Jobs are mutated only through the JobController's update operations and
// never after reaching a terminal status.
type Job struct {
	ID           string         `bson:"_id" json:"id"`
	SourceType   string         `bson:"source_type" json:"source_type"`
	SourceConfig map[string]any `bson:"source_config" json:"source_config"`
	Description  string         `bson:"description,omitempty" json:"description,omitempty"`
	Status       JobStatus      `bson:"status" json:"status"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	TotalRecords      *int `bson:"total_records,omitempty" json:"total_records,omitempty"`
	ProcessedRecords  *int `bson:"processed_records,omitempty" json:"processed_records,omitempty"`
	SuccessfulRecords *int `bson:"successful_records,omitempty" json:"successful_records,omitempty"`
	FailedRecords     *int `bson:"failed_records,omitempty" json:"failed_records,omitempty"`

	Progress float64       `bson:"progress" json:"progress"`
	Errors   []string      `bson:"errors" json:"errors"`
	Result   *IngestResult `bson:"result,omitempty" json:"result,omitempty"`
	Error    string        `bson:"error,omitempty" json:"error,omitempty"`
}
