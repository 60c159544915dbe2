/*
PURPOSE:
  Writes per-request generation results to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Optional CSV output of every prompt's latency and outcome.

  Implementation-discovered:
  - Rows are written from concurrent workers, so writes are serialised.
  - Each row carries the run ID so several runs can be concatenated.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Sink)
  - Consumes: internal/model.GenerationResult

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Mutex around the writer.

USAGE:
  w, err := output.NewCSVWriter("results.csv", runID)
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when GenerationResult changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/daryltucker/ollama-loadtest/internal/model"
)

// CSVHeader is the first row of every results file.
var CSVHeader = []string{
	"run_id", "index", "model", "prompt", "timestamp", "latency_s",
	"success", "eval_count", "response", "error",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	runID  string
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path, runID string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
		runID:  runID,
	}, nil
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.GenerationResult) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		cw.runID,
		strconv.Itoa(r.Index),
		r.Model,
		string(r.Prompt),
		r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%.4f", r.Latency.Seconds()),
		strconv.FormatBool(r.Success),
		strconv.Itoa(r.EvalCount),
		r.Response,
		r.Error,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
