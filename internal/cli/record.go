package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vburojevic/tdb/internal/output"
)

// recordFile is the transcript file of a run. Records are buffered and
// flushed on Close.
type recordFile struct {
	*output.NDJSONWriter

	path           string
	outputFile     *os.File
	bufferedWriter *bufio.Writer
}

func openRecordFile(path string) (*recordFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &recordFile{
		NDJSONWriter:   output.NewNDJSONWriter(w),
		path:           path,
		outputFile:     f,
		bufferedWriter: w,
	}, nil
}

func (r *recordFile) Close() error {
	flushErr := r.bufferedWriter.Flush()
	if err := r.outputFile.Close(); err != nil {
		return err
	}
	return flushErr
}
