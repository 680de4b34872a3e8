package ingest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// ProductStore is the bulk insert sink for canonical records.
type ProductStore interface {
	InsertProducts(ctx context.Context, products []model.Product) error
}

// JobTracker is the surface the pipeline reports through. Implementations
// must make each call a single atomic store write so that progress for a job
// is observable strictly in batch order.
type JobTracker interface {
	MarkProcessing(ctx context.Context, jobID string) error
	ReportProgress(ctx context.Context, jobID string, processed, total, successful, failed int) error
	AppendError(ctx context.Context, jobID string, message string) error
	Complete(ctx context.Context, jobID string, result model.IngestResult) error
	Fail(ctx context.Context, jobID string, message string) error
}

// Pipeline drives one ingestion run: chunked read, per-row transform, bulk
// persist, job progress. One run is owned by one goroutine; concurrent runs
// share nothing but the two stores.
type Pipeline struct {
	products  ProductStore
	jobs      JobTracker
	chunkSize int
}

func NewPipeline(products ProductStore, jobs JobTracker, chunkSize int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &Pipeline{
		products:  products,
		jobs:      jobs,
		chunkSize: chunkSize,
	}
}

// Run ingests the CSV at path. When jobID is non-empty the run is tracked:
// the job moves to processing before the first read, receives a progress
// update after every batch, and is finalized with the aggregate result or the
// fatal error. Row-level validation failures never abort the run; they are
// recorded on the job and the run completes. Already-inserted batches are
// never rolled back on failure.
func (p *Pipeline) Run(ctx context.Context, path string, jobID string) (model.IngestResult, error) {
	tracked := jobID != "" && p.jobs != nil

	if tracked {
		if err := p.jobs.MarkProcessing(ctx, jobID); err != nil {
			return model.IngestResult{}, p.fatal(ctx, jobID, &StoreWriteError{Op: "mark processing", Cause: err})
		}
	}

	result := model.IngestResult{Errors: []string{}}

	// Pre-scan once so progress is reported against a known total. The
	// reader is not restartable, so the source is reopened for the real run.
	total := 0
	if tracked {
		counted, err := p.countRecords(path)
		if err != nil {
			return result, p.fatal(ctx, jobID, err)
		}
		total = counted
		if err := p.jobs.ReportProgress(ctx, jobID, 0, total, 0, 0); err != nil {
			return result, p.fatal(ctx, jobID, &StoreWriteError{Op: "progress update", Cause: err})
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return result, p.fatal(ctx, jobID, fmt.Errorf("opening source: %w", err))
	}
	defer file.Close()

	reader, err := NewChunkReader(file, p.chunkSize)
	if err != nil {
		return result, p.fatal(ctx, jobID, err)
	}

	processed := 0
	rowIndex := 0
	batchNumber := 0

	for {
		batch, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, p.fatal(ctx, jobID, err)
		}

		batchNumber++
		valid, batchErrors := p.transformBatch(batch, rowIndex)
		rowIndex += len(batch)

		log.Debug().
			Str("jobID", jobID).
			Int("batch", batchNumber).
			Int("rows", len(batch)).
			Int("valid", len(valid)).
			Int("invalid", len(batchErrors)).
			Msg("Processing batch")

		if len(valid) > 0 {
			if err := p.products.InsertProducts(ctx, valid); err != nil {
				return result, p.fatal(ctx, jobID, &StoreWriteError{Op: "bulk insert", Cause: err})
			}
		}

		result.TotalRecords += len(batch)
		result.SuccessfulRecords += len(valid)
		result.FailedRecords += len(batchErrors)
		result.Errors = append(result.Errors, batchErrors...)
		processed += len(batch)

		if tracked {
			for _, msg := range batchErrors {
				if err := p.jobs.AppendError(ctx, jobID, msg); err != nil {
					return result, p.fatal(ctx, jobID, &StoreWriteError{Op: "append error", Cause: err})
				}
			}
			// Progress is always reported against the pre-scanned total so
			// intermediate updates never claim a finished run.
			if err := p.jobs.ReportProgress(ctx, jobID, processed, total,
				result.SuccessfulRecords, result.FailedRecords); err != nil {
				return result, p.fatal(ctx, jobID, &StoreWriteError{Op: "progress update", Cause: err})
			}
		}

		// The batch and its transformed records go out of scope here; the
		// working set stays bounded by one chunk regardless of file size.
	}

	if tracked {
		if err := p.jobs.Complete(ctx, jobID, result); err != nil {
			return result, p.fatal(ctx, jobID, &StoreWriteError{Op: "finalize job", Cause: err})
		}
	}

	log.Info().
		Str("jobID", jobID).
		Int("total", result.TotalRecords).
		Int("successful", result.SuccessfulRecords).
		Int("failed", result.FailedRecords).
		Msg("Ingestion run finished")

	return result, nil
}

// transformBatch transforms every row independently; a failure in one row
// never blocks the rest. It returns the valid records and one error string
// per failed row, tied to the row's natural key.
func (p *Pipeline) transformBatch(batch []model.Row, startIndex int) ([]model.Product, []string) {
	valid := make([]model.Product, 0, len(batch))
	var errs []string

	for i, row := range batch {
		product, err := TransformRow(row, startIndex+i+1)
		if err != nil {
			if !IsRowError(err) {
				// TransformRow only produces FieldValidationError today;
				// anything else would be a programming error worth seeing.
				log.Error().Err(err).Msg("Unexpected transform failure")
			}
			errs = append(errs, fmt.Sprintf("Error processing record %s: %s",
				NaturalKey(row, startIndex+i+1), err.Error()))
			continue
		}
		valid = append(valid, product)
	}

	return valid, errs
}

// countRecords streams the file once, in chunks, to compute the total row
// count without materializing it.
func (p *Pipeline) countRecords(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening source for pre-scan: %w", err)
	}
	defer file.Close()

	reader, err := NewChunkReader(file, p.chunkSize)
	if err != nil {
		return 0, err
	}

	total := 0
	for {
		batch, err := reader.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		total += len(batch)
	}
}

// fatal records a whole-run failure on the job and hands the error back to
// the caller. Tracker failures during the recording itself are logged and
// swallowed: the original error is the one worth propagating.
func (p *Pipeline) fatal(ctx context.Context, jobID string, err error) error {
	log.Error().Err(err).Str("jobID", jobID).Msg("Ingestion run failed")

	if jobID != "" && p.jobs != nil {
		if appendErr := p.jobs.AppendError(ctx, jobID, "Fatal error: "+err.Error()); appendErr != nil {
			log.Error().Err(appendErr).Str("jobID", jobID).Msg("Failed to record fatal error on job")
		}
		if failErr := p.jobs.Fail(ctx, jobID, err.Error()); failErr != nil {
			log.Error().Err(failErr).Str("jobID", jobID).Msg("Failed to mark job as failed")
		}
	}

	return err
}
