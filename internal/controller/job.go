package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Batman16012001/Locally-Connector-New/internal/aws"
	"github.com/Batman16012001/Locally-Connector-New/internal/cache"
	"github.com/Batman16012001/Locally-Connector-New/internal/database"
	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// terminal jobs never change, so their reads can be served from cache
const jobCacheTTL = 10 * time.Minute

// JobController is the job lifecycle manager. All job mutations go through
// it; the ingestion pipeline reports progress and terminal state via the
// tracker methods, which satisfy ingest.JobTracker.
type JobController interface {
	// CreateJob allocates a fresh job in pending state
	CreateJob(ctx context.Context, create model.JobCreate) (*model.Job, error)

	// GetJob returns the job, or nil when no such job exists
	GetJob(ctx context.Context, jobID string) (*model.Job, error)

	// ListJobs returns jobs filtered by status (empty means all), paginated
	ListJobs(ctx context.Context, status model.JobStatus, limit, skip int) ([]*model.Job, error)

	// DeleteJob removes the job and any archived source artifact it
	// references. Ingested products are left in place. Returns whether a
	// job existed.
	DeleteJob(ctx context.Context, jobID string) (bool, error)

	// Tracker surface used by the pipeline
	MarkProcessing(ctx context.Context, jobID string) error
	ReportProgress(ctx context.Context, jobID string, processed, total, successful, failed int) error
	AppendError(ctx context.Context, jobID string, message string) error
	Complete(ctx context.Context, jobID string, result model.IngestResult) error
	Fail(ctx context.Context, jobID string, message string) error
}

type jobController struct {
	db    database.JobDatabase
	cache cache.Cache     // nil disables the terminal-job read cache
	files aws.FileService // nil when archival is disabled
}

// NewJobController creates a new job controller. cache and files may be nil.
func NewJobController(db database.JobDatabase, jobCache cache.Cache, files aws.FileService) JobController {
	return &jobController{
		db:    db,
		cache: jobCache,
		files: files,
	}
}

// CreateJob inserts a pending job with a fresh UUID and zeroed progress.
func (c *jobController) CreateJob(ctx context.Context, create model.JobCreate) (*model.Job, error) {
	if create.SourceType != model.SourceTypeCSV {
		// "api" and anything else are not-yet-specified pipeline variants.
		return nil, fmt.Errorf("unsupported source type: %q", create.SourceType)
	}

	job := &model.Job{
		ID:           uuid.NewString(),
		SourceType:   create.SourceType,
		SourceConfig: create.SourceConfig,
		Description:  create.Description,
		Status:       model.StatusPending,
		Progress:     0,
		Errors:       []string{},
	}

	if err := c.db.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Info().Str("jobID", job.ID).Str("sourceType", job.SourceType).Msg("Job created")
	return job, nil
}

// GetJob serves terminal jobs from the cache when one is configured; a job
// that reached completed or failed never changes again, so the cached copy
// cannot go stale.
func (c *jobController) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, jobCacheKey(jobID)); err == nil {
			var job model.Job
			if err := json.Unmarshal(data, &job); err == nil {
				return &job, nil
			}
			log.Warn().Str("jobID", jobID).Msg("Discarding undecodable cached job")
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("jobID", jobID).Msg("Job cache read failed")
		}
	}

	job, err := c.db.GetJobByID(ctx, jobID)
	if err != nil || job == nil {
		return job, err
	}

	if c.cache != nil && job.Status.IsTerminal() {
		if data, err := json.Marshal(job); err == nil {
			if err := c.cache.Set(ctx, jobCacheKey(jobID), data, jobCacheTTL); err != nil {
				log.Warn().Err(err).Str("jobID", jobID).Msg("Job cache write failed")
			}
		}
	}

	return job, nil
}

func jobCacheKey(jobID string) string {
	return "job:" + jobID
}

func (c *jobController) ListJobs(ctx context.Context, status model.JobStatus, limit, skip int) ([]*model.Job, error) {
	return c.db.ListJobs(ctx, status, limit, skip)
}

func (c *jobController) DeleteJob(ctx context.Context, jobID string) (bool, error) {
	job, err := c.db.GetJobByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	if c.files != nil {
		if key, ok := job.SourceConfig["archive_key"].(string); ok && key != "" {
			if err := c.files.DeleteFile(key); err != nil {
				// Bookkeeping removal still proceeds; the orphaned object
				// is only storage cost.
				log.Warn().Err(err).Str("jobID", jobID).Str("key", key).Msg("Failed to delete archived source")
			}
		}
	}

	if c.cache != nil {
		if err := c.cache.Delete(ctx, jobCacheKey(jobID)); err != nil {
			log.Warn().Err(err).Str("jobID", jobID).Msg("Failed to evict cached job")
		}
	}

	return c.db.DeleteJob(ctx, jobID)
}

// MarkProcessing moves a pending job into processing. A job already past
// pending is left untouched; the transition is a no-op, not an error, so an
// at-least-once task start cannot corrupt the state machine.
func (c *jobController) MarkProcessing(ctx context.Context, jobID string) error {
	updated, err := c.db.UpdateJobStatus(ctx, jobID, model.StatusProcessing, model.StatusUpdate{})
	if err != nil {
		return err
	}
	if !updated {
		log.Warn().Str("jobID", jobID).Msg("Job not transitioned to processing; already started or terminal")
	}
	return nil
}

func (c *jobController) ReportProgress(ctx context.Context, jobID string, processed, total, successful, failed int) error {
	return c.db.UpdateJobProgress(ctx, jobID, processed, total, successful, failed)
}

func (c *jobController) AppendError(ctx context.Context, jobID string, message string) error {
	return c.db.AddJobError(ctx, jobID, message)
}

// Complete persists the aggregate result and transitions the job to
// completed with full progress.
func (c *jobController) Complete(ctx context.Context, jobID string, result model.IngestResult) error {
	if err := c.db.SetJobResult(ctx, jobID, result); err != nil {
		return err
	}

	progress := 100.0
	_, err := c.db.UpdateJobStatus(ctx, jobID, model.StatusCompleted, model.StatusUpdate{
		Progress: &progress,
	})
	return err
}

func (c *jobController) Fail(ctx context.Context, jobID string, message string) error {
	_, err := c.db.UpdateJobStatus(ctx, jobID, model.StatusFailed, model.StatusUpdate{
		Error: &message,
	})
	return err
}
