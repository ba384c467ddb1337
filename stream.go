// stream.go: Output stream ownership and the console fallback
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"fmt"
	"io"
	"os"
)

// destination is the single writable output a Sink owns at any instant.
// Write blocks until the underlying resource has accepted the chunk, which
// is how backpressure reaches the flush path. Close returns only once the
// resource has finished flushing.
type destination interface {
	io.Writer
	Close() error
}

// fileDestination appends to one date-stamped log file.
type fileDestination struct {
	file *os.File
}

func (d *fileDestination) Write(p []byte) (int, error) {
	return d.file.Write(p)
}

// Close syncs before closing so a caller may open a new stream for the same
// file as soon as Close returns.
func (d *fileDestination) Close() error {
	syncErr := d.file.Sync()
	if err := d.file.Close(); err != nil {
		return err
	}
	return syncErr
}

// consoleDestination substitutes for a file that could not be opened. It
// keeps the destination contract alive so the rotation path never has to
// null-check its stream.
type consoleDestination struct {
	w io.Writer
}

func (d *consoleDestination) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

func (d *consoleDestination) Close() error {
	return nil
}

// openDestination opens an append-mode stream for path. It never returns
// nil: when the file cannot be opened the error is reported and every
// subsequent chunk goes to standard error instead.
func (s *Sink) openDestination(path string) destination {
	var file *os.File
	err := retryFileOperation(func() error {
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, s.cfg.FileMode) // #nosec G304 -- path is built from the sanitized base name
		return err
	}, defaultRetryCount, defaultRetryDelay)

	if err != nil {
		s.report("stream_open", fmt.Errorf("failed to open log file %q, falling back to stderr: %v", path, err))
		s.usingFallback.Store(true)
		return &consoleDestination{w: os.Stderr}
	}

	s.usingFallback.Store(false)
	return &fileDestination{file: file}
}
