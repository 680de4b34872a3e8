package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Batman16012001/Locally-Connector-New/internal/aws"
	"github.com/Batman16012001/Locally-Connector-New/internal/config"
	"github.com/Batman16012001/Locally-Connector-New/internal/ingest"
	"github.com/Batman16012001/Locally-Connector-New/internal/model"
	"github.com/Batman16012001/Locally-Connector-New/internal/orchestrator"
)

// IngestController accepts ingestion submissions, creates the tracking job,
// and hands the run to the background executor. Callers get the job id back
// immediately and poll for status; no future or callback is returned.
type IngestController interface {
	// SubmitUpload buffers an uploaded CSV to local storage, creates a job,
	// and enqueues the ingestion run.
	SubmitUpload(ctx context.Context, filename, contentType string, src io.Reader) (*model.Job, error)

	// SubmitDescriptor creates a job from a client-supplied descriptor. Only
	// csv descriptors with a locally addressable "path" are runnable.
	SubmitDescriptor(ctx context.Context, create model.JobCreate) (*model.Job, error)
}

type ingestController struct {
	jobs     JobController
	pipeline *ingest.Pipeline
	executor orchestrator.Executor
	files    aws.FileService // nil when archival is disabled
	cfg      config.IngestConfig
}

func NewIngestController(jobs JobController, pipeline *ingest.Pipeline,
	executor orchestrator.Executor, files aws.FileService, cfg config.IngestConfig) IngestController {
	return &ingestController{
		jobs:     jobs,
		pipeline: pipeline,
		executor: executor,
		files:    files,
		cfg:      cfg,
	}
}

// SubmitUpload implements IngestController
func (c *ingestController) SubmitUpload(ctx context.Context, filename, contentType string, src io.Reader) (*model.Job, error) {
	tmp, err := os.CreateTemp(c.cfg.TempDir, "upload-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}

	sourceConfig := map[string]any{
		"filename":     filename,
		"content_type": contentType,
	}

	if key, archiveErr := c.archive(tmp, filename); archiveErr != nil {
		log.Warn().Err(archiveErr).Str("filename", filename).Msg("Failed to archive uploaded source")
	} else if key != "" {
		sourceConfig["archive_key"] = key
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}

	job, err := c.jobs.CreateJob(ctx, model.JobCreate{
		SourceType:   model.SourceTypeCSV,
		SourceConfig: sourceConfig,
		Description:  "Ingesting CSV file: " + filename,
	})
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	path := tmp.Name()
	if err := c.enqueueRun(job.ID, path, true); err != nil {
		os.Remove(path)
		return job, err
	}

	return job, nil
}

// SubmitDescriptor implements IngestController
func (c *ingestController) SubmitDescriptor(ctx context.Context, create model.JobCreate) (*model.Job, error) {
	path, _ := create.SourceConfig["path"].(string)
	if create.SourceType == model.SourceTypeCSV && path == "" {
		return nil, fmt.Errorf("csv source descriptor requires a local \"path\"")
	}

	job, err := c.jobs.CreateJob(ctx, create)
	if err != nil {
		return nil, err
	}

	// Descriptor-submitted files are caller-owned; they are not removed
	// after the run.
	if err := c.enqueueRun(job.ID, path, false); err != nil {
		return job, err
	}

	return job, nil
}

// enqueueRun submits the pipeline run to the executor. The run owns its own
// lifetime: request contexts are long gone by the time it executes.
func (c *ingestController) enqueueRun(jobID, path string, removeAfter bool) error {
	err := c.executor.Submit(func(taskCtx context.Context) {
		if removeAfter {
			defer os.Remove(path)
		}
		if _, runErr := c.pipeline.Run(taskCtx, path, jobID); runErr != nil {
			log.Error().Err(runErr).Str("jobID", jobID).Msg("Background ingestion failed")
		}
	})
	if err != nil {
		// The job would otherwise sit pending forever.
		if failErr := c.jobs.Fail(context.Background(), jobID, "failed to enqueue ingestion: "+err.Error()); failErr != nil {
			log.Error().Err(failErr).Str("jobID", jobID).Msg("Failed to mark unenqueued job as failed")
		}
		return fmt.Errorf("failed to enqueue ingestion: %w", err)
	}
	return nil
}

// archive uploads the buffered file to the configured bucket and returns the
// object key. A nil file service disables archival.
func (c *ingestController) archive(tmp *os.File, filename string) (string, error) {
	if c.files == nil {
		return "", nil
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := fmt.Sprintf("uploads/%s/%s", uuid.NewString(), filepath.Base(filename))
	if _, err := c.files.UploadFile(key, tmp); err != nil {
		return "", err
	}

	log.Debug().Str("key", key).Msg("Archived uploaded source")
	return key, nil
}
