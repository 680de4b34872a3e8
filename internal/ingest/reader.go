package ingest

import (
	"encoding/csv"
	"io"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// ChunkReader produces a lazy, finite sequence of row batches from a CSV
// stream, in original row order, holding at most one chunk's worth of rows in
// memory. It is not restartable: a fresh sequence requires reopening the
// source.
type ChunkReader struct {
	csv       *csv.Reader
	header    []string
	chunkSize int
	done      bool
}

// NewChunkReader reads the header row eagerly so that an unparseable source
// fails fast with a SourceFormatError instead of midway through a run.
func NewChunkReader(r io.Reader, chunkSize int) (*ChunkReader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false
	// Short rows are null-filled against the header rather than rejected.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, &SourceFormatError{Cause: err}
	}

	return &ChunkReader{
		csv:       cr,
		header:    header,
		chunkSize: chunkSize,
	}, nil
}

// Header returns the column names in source order.
func (c *ChunkReader) Header() []string {
	return c.header
}

// Next returns the next batch of up to chunkSize rows. The final batch of a
// file may be smaller. It returns io.EOF once the source is exhausted and a
// SourceFormatError if a record cannot be parsed.
func (c *ChunkReader) Next() ([]model.Row, error) {
	if c.done {
		return nil, io.EOF
	}

	batch := make([]model.Row, 0, c.chunkSize)
	for len(batch) < c.chunkSize {
		record, err := c.csv.Read()
		if err == io.EOF {
			c.done = true
			break
		}
		if err != nil {
			return nil, &SourceFormatError{Cause: err}
		}
		batch = append(batch, c.toRow(record))
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// toRow maps a CSV record onto the header. Empty cells become nil so that
// downstream null propagation works the same for absent and blank values.
func (c *ChunkReader) toRow(record []string) model.Row {
	row := make(model.Row, len(c.header))
	for i, col := range c.header {
		if i >= len(record) || record[i] == "" {
			row[col] = nil
			continue
		}
		row[col] = record[i]
	}
	return row
}
