package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Batman16012001/Locally-Connector-New/internal/ingest"
	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

const productHeader = "LCID,LCID_slug,Variant Barcode,Variant Inventory Qty,Handle,Vendor,Product Gender,Title,Tags,Type,Option1 Name,Option1 Value,Option2 Name,Option2 Value,Variant Price,Variant Compare At Price,Variant Image,Body HTML,Published,Gift Card,Weight LBs"

// productLine renders one valid CSV data row for the given LCID.
func productLine(lcid int) string {
	return fmt.Sprintf("%d,slug-%d,barcode-%d,3,handle-%d,Acme,women,Item %d,\"a,b\",shirt,,,,,9.99,,,,true,false,", lcid, lcid, lcid, lcid, lcid)
}

// brokenLine is missing its Title, so it fails transformation.
func brokenLine(lcid int) string {
	return fmt.Sprintf("%d,slug-%d,barcode-%d,3,handle-%d,Acme,women,,\"a,b\",shirt,,,,,9.99,,,,true,false,", lcid, lcid, lcid, lcid)
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	content := productHeader + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fakeProductStore records batches and optionally fails on the nth insert.
type fakeProductStore struct {
	batches     [][]model.Product
	failOnBatch int // 1-based; 0 means never fail
}

func (f *fakeProductStore) InsertProducts(_ context.Context, products []model.Product) error {
	if f.failOnBatch > 0 && len(f.batches)+1 == f.failOnBatch {
		return errors.New("insert many failed")
	}
	copied := make([]model.Product, len(products))
	copy(copied, products)
	f.batches = append(f.batches, copied)
	return nil
}

func (f *fakeProductStore) inserted() int {
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

type progressUpdate struct {
	processed, total, successful, failed int
}

// fakeTracker records every tracker call in order.
type fakeTracker struct {
	processing bool
	progress   []progressUpdate
	errors     []string
	completed  *model.IngestResult
	failedMsg  *string
	failNext   error // when set, the next tracker write returns this error
}

func (f *fakeTracker) MarkProcessing(context.Context, string) error {
	f.processing = true
	return nil
}

func (f *fakeTracker) ReportProgress(_ context.Context, _ string, processed, total, successful, failed int) error {
	if f.failNext != nil {
		return f.failNext
	}
	f.progress = append(f.progress, progressUpdate{processed, total, successful, failed})
	return nil
}

func (f *fakeTracker) AppendError(_ context.Context, _ string, message string) error {
	f.errors = append(f.errors, message)
	return nil
}

func (f *fakeTracker) Complete(_ context.Context, _ string, result model.IngestResult) error {
	f.completed = &result
	return nil
}

func (f *fakeTracker) Fail(_ context.Context, _ string, message string) error {
	f.failedMsg = &message
	return nil
}

func TestPipeline_ThreeRowsOneInvalid(t *testing.T) {
	// Rows [valid, invalid, valid] with chunk size 2: batch 1 inserts one
	// record and appends one error, batch 2 inserts one record.
	path := writeCSV(t, productLine(1), brokenLine(2), productLine(3))

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	result, err := pipeline.Run(context.Background(), path, "job-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 2, result.SuccessfulRecords)
	assert.Equal(t, 1, result.FailedRecords)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "record 2")

	require.Len(t, store.batches, 2)
	assert.Len(t, store.batches[0], 1)
	assert.Len(t, store.batches[1], 1)

	assert.True(t, tracker.processing)
	require.NotNil(t, tracker.completed)
	assert.Equal(t, result, *tracker.completed)
	assert.Nil(t, tracker.failedMsg)

	require.Len(t, tracker.errors, 1)
	assert.Contains(t, tracker.errors[0], "record 2")

	// Pre-scan update plus one per batch, against the known total.
	require.Len(t, tracker.progress, 3)
	assert.Equal(t, progressUpdate{0, 3, 0, 0}, tracker.progress[0])
	assert.Equal(t, progressUpdate{2, 3, 1, 1}, tracker.progress[1])
	assert.Equal(t, progressUpdate{3, 3, 2, 1}, tracker.progress[2])
}

func TestPipeline_CounterInvariants(t *testing.T) {
	lines := make([]string, 0, 25)
	for i := 1; i <= 25; i++ {
		if i%5 == 0 {
			lines = append(lines, brokenLine(i))
		} else {
			lines = append(lines, productLine(i))
		}
	}
	path := writeCSV(t, lines...)

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 4)

	result, err := pipeline.Run(context.Background(), path, "job-1")
	require.NoError(t, err)

	assert.Equal(t, result.TotalRecords, result.SuccessfulRecords+result.FailedRecords)
	assert.Equal(t, 25, result.TotalRecords)
	assert.Equal(t, 20, result.SuccessfulRecords)
	assert.Equal(t, 5, result.FailedRecords)
	assert.Equal(t, 20, store.inserted())
	assert.Len(t, result.Errors, 5)

	// Progress is monotonic and always consistent at update boundaries.
	prev := -1
	for _, u := range tracker.progress {
		assert.GreaterOrEqual(t, u.processed, prev)
		assert.Equal(t, u.processed, u.successful+u.failed)
		prev = u.processed
	}
	last := tracker.progress[len(tracker.progress)-1]
	assert.Equal(t, 25, last.processed)
	assert.Equal(t, 25, last.total)
}

func TestPipeline_BatchSizesAndProgressSequence(t *testing.T) {
	lines := make([]string, 0, 1200)
	for i := 1; i <= 1200; i++ {
		lines = append(lines, productLine(i))
	}
	path := writeCSV(t, lines...)

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 500)

	result, err := pipeline.Run(context.Background(), path, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1200, result.SuccessfulRecords)

	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 500)
	assert.Len(t, store.batches[1], 500)
	assert.Len(t, store.batches[2], 200)

	require.Len(t, tracker.progress, 4)
	assert.Equal(t, 500, tracker.progress[1].processed)
	assert.Equal(t, 1000, tracker.progress[2].processed)
	assert.Equal(t, 1200, tracker.progress[3].processed)
	for _, u := range tracker.progress {
		assert.Equal(t, 1200, u.total)
	}
}

func TestPipeline_IntermediateUpdatesReportKnownTotal(t *testing.T) {
	// A tracked run knows the full row count before the first batch; no
	// intermediate update may shrink the total to the running count, which
	// would show the job as finished from batch one.
	lines := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		lines = append(lines, productLine(i))
	}
	path := writeCSV(t, lines...)

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 3)

	_, err := pipeline.Run(context.Background(), path, "job-1")
	require.NoError(t, err)

	require.NotEmpty(t, tracker.progress)
	for i, u := range tracker.progress {
		assert.Equal(t, 10, u.total, "update %d reported total %d", i, u.total)
		assert.LessOrEqual(t, u.processed, u.total)
	}
}

func TestPipeline_InsertFailureOnSecondBatch(t *testing.T) {
	lines := make([]string, 0, 6)
	for i := 1; i <= 6; i++ {
		lines = append(lines, productLine(i))
	}
	path := writeCSV(t, lines...)

	store := &fakeProductStore{failOnBatch: 2}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	_, err := pipeline.Run(context.Background(), path, "job-1")
	require.Error(t, err)

	var writeErr *ingest.StoreWriteError
	require.ErrorAs(t, err, &writeErr)

	// Batch 1 stands; nothing is rolled back.
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 2)

	require.NotNil(t, tracker.failedMsg)
	assert.Nil(t, tracker.completed)
	require.NotEmpty(t, tracker.errors)
	assert.Contains(t, tracker.errors[len(tracker.errors)-1], "Fatal error:")
}

func TestPipeline_TrackerFailureIsFatal(t *testing.T) {
	path := writeCSV(t, productLine(1))

	store := &fakeProductStore{}
	tracker := &fakeTracker{failNext: errors.New("jobs collection unavailable")}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	_, err := pipeline.Run(context.Background(), path, "job-1")
	require.Error(t, err)

	var writeErr *ingest.StoreWriteError
	require.ErrorAs(t, err, &writeErr)
	require.NotNil(t, tracker.failedMsg)
}

func TestPipeline_UnparseableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	_, err := pipeline.Run(context.Background(), path, "job-1")
	require.Error(t, err)

	var formatErr *ingest.SourceFormatError
	require.ErrorAs(t, err, &formatErr)
	require.NotNil(t, tracker.failedMsg)
	require.NotEmpty(t, tracker.errors)
	assert.Contains(t, tracker.errors[0], "Fatal error:")
}

func TestPipeline_AllRowsInvalidSkipsInsert(t *testing.T) {
	path := writeCSV(t, brokenLine(1), brokenLine(2))

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 10)

	result, err := pipeline.Run(context.Background(), path, "job-1")
	require.NoError(t, err)

	assert.Empty(t, store.batches)
	assert.Equal(t, 2, result.FailedRecords)
	assert.Equal(t, 0, result.SuccessfulRecords)
	require.NotNil(t, tracker.completed)
}

func TestPipeline_UntrackedRun(t *testing.T) {
	path := writeCSV(t, productLine(1), brokenLine(2), productLine(3))

	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	result, err := pipeline.Run(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 2, result.SuccessfulRecords)

	// No job id, no tracking of any kind.
	assert.False(t, tracker.processing)
	assert.Empty(t, tracker.progress)
	assert.Empty(t, tracker.errors)
	assert.Nil(t, tracker.completed)
}

func TestPipeline_MissingFile(t *testing.T) {
	store := &fakeProductStore{}
	tracker := &fakeTracker{}
	pipeline := ingest.NewPipeline(store, tracker, 2)

	_, err := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "job-1")
	require.Error(t, err)
	require.NotNil(t, tracker.failedMsg)
}
