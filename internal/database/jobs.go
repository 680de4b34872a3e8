package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// JobDatabase defines job-related database operations. Every write is a
// single-document atomic update; no cross-document transactions are used.
// Writes against a job that already reached a terminal status match nothing
// and are reported as no-ops, never silent overwrites.
type JobDatabase interface {
	// Create a new job
	CreateJob(ctx context.Context, job *model.Job) error

	// Get a job by ID. A missing job is (nil, nil), not an error.
	GetJobByID(ctx context.Context, id string) (*model.Job, error)

	// List jobs, optionally filtered by status, paginated
	ListJobs(ctx context.Context, status model.JobStatus, limit, skip int) ([]*model.Job, error)

	// Update job status and the optional fields supplied alongside it
	UpdateJobStatus(ctx context.Context, id string, status model.JobStatus, update model.StatusUpdate) (bool, error)

	// Update job progress counters, recomputing the percentage
	UpdateJobProgress(ctx context.Context, id string, processed, total, successful, failed int) error

	// Append one error message to the job's error sequence
	AddJobError(ctx context.Context, id string, errorMsg string) error

	// Set the terminal result payload independent of status
	SetJobResult(ctx context.Context, id string, result model.IngestResult) error

	// Delete a job; reports whether a record existed
	DeleteJob(ctx context.Context, id string) (bool, error)

	// Count jobs by status
	CountJobsByStatus(ctx context.Context, status model.JobStatus) (int64, error)
}

// notTerminal is the filter guard that keeps terminal jobs immutable at the
// store level.
func notTerminal(id string) bson.M {
	return bson.M{
		"_id": id,
		"status": bson.M{
			"$nin": bson.A{model.StatusCompleted, model.StatusFailed},
		},
	}
}

// CreateJob inserts a fresh pending job
func (m *mongoDB) CreateJob(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if job.Status == "" {
		job.Status = model.StatusPending
	}
	if job.Errors == nil {
		job.Errors = []string{}
	}

	_, err := m.jobsCol.InsertOne(ctx, job)
	if err != nil {
		log.Error().Err(err).Str("jobID", job.ID).Msg("Failed to create job")
		return err
	}

	log.Debug().Str("jobID", job.ID).Str("sourceType", job.SourceType).Msg("Created new job")
	return nil
}

// GetJobByID retrieves a job by its ID
func (m *mongoDB) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := m.jobsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		log.Error().Err(err).Str("jobID", id).Msg("Failed to get job")
		return nil, err
	}

	return &job, nil
}

// ListJobs retrieves jobs, newest first, optionally filtered by status
func (m *mongoDB) ListJobs(ctx context.Context, status model.JobStatus, limit, skip int) ([]*model.Job, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(skip)).
		SetSort(bson.M{"created_at": -1})

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := m.jobsCol.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("Failed to list jobs")
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []*model.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		log.Error().Err(err).Msg("Failed to decode jobs")
		return nil, err
	}

	return jobs, nil
}

// UpdateJobStatus merges the status and any supplied optional fields in one
// atomic update, refreshing updated_at and setting completed_at on terminal
// transitions. It returns false when the job is missing or already terminal.
func (m *mongoDB) UpdateJobStatus(ctx context.Context, id string, status model.JobStatus, update model.StatusUpdate) (bool, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}

	if update.Error != nil {
		set["error"] = *update.Error
	}
	if update.Progress != nil {
		set["progress"] = *update.Progress
	}
	if update.Result != nil {
		set["result"] = update.Result
	}
	if status.IsTerminal() {
		set["completed_at"] = time.Now().UTC()
	}

	filter := notTerminal(id)
	if status == model.StatusProcessing {
		// processing is only reachable from pending
		filter["status"] = model.StatusPending
	}

	result, err := m.jobsCol.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Str("status", string(status)).Msg("Failed to update job status")
		return false, err
	}

	log.Debug().Str("jobID", id).Str("status", string(status)).Msg("Updated job status")
	return result.MatchedCount > 0, nil
}

// UpdateJobProgress updates the progress counters and the derived percentage
// (0 when the total is unknown) in a single atomic update.
func (m *mongoDB) UpdateJobProgress(ctx context.Context, id string, processed, total, successful, failed int) error {
	progress := 0.0
	if total > 0 {
		progress = float64(processed) / float64(total) * 100
	}

	update := bson.M{
		"$set": bson.M{
			"progress":           progress,
			"processed_records":  processed,
			"total_records":      total,
			"successful_records": successful,
			"failed_records":     failed,
			"updated_at":         time.Now().UTC(),
		},
	}

	_, err := m.jobsCol.UpdateOne(ctx, notTerminal(id), update)
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Int("processed", processed).Msg("Failed to update job progress")
		return err
	}

	log.Debug().Str("jobID", id).Int("processed", processed).Int("total", total).Msg("Updated job progress")
	return nil
}

// AddJobError appends an error message to the job's error sequence without
// reading the document first.
func (m *mongoDB) AddJobError(ctx context.Context, id string, errorMsg string) error {
	update := bson.M{
		"$push": bson.M{
			"errors": errorMsg,
		},
		"$set": bson.M{
			"updated_at": time.Now().UTC(),
		},
	}

	_, err := m.jobsCol.UpdateOne(ctx, notTerminal(id), update)
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Str("error", errorMsg).Msg("Failed to add job error")
		return err
	}

	log.Debug().Str("jobID", id).Str("error", errorMsg).Msg("Added job error")
	return nil
}

// SetJobResult sets the terminal result payload
func (m *mongoDB) SetJobResult(ctx context.Context, id string, result model.IngestResult) error {
	update := bson.M{
		"$set": bson.M{
			"result":     result,
			"updated_at": time.Now().UTC(),
		},
	}

	_, err := m.jobsCol.UpdateOne(ctx, notTerminal(id), update)
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Msg("Failed to set job result")
		return err
	}

	return nil
}

// DeleteJob removes the job record
func (m *mongoDB) DeleteJob(ctx context.Context, id string) (bool, error) {
	result, err := m.jobsCol.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Msg("Failed to delete job")
		return false, err
	}

	return result.DeletedCount > 0, nil
}

// CountJobsByStatus counts jobs with a specific status
func (m *mongoDB) CountJobsByStatus(ctx context.Context, status model.JobStatus) (int64, error) {
	count, err := m.jobsCol.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("Failed to count jobs by status")
		return 0, err
	}

	return count, nil
}
