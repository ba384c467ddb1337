// hemera.go: Public API - Date-stamped log-file sink
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// ErrClosed is returned by ingestion methods after Close.
var ErrClosed = errors.New("sink is closed")

// Record is one structured log entry handed to the sink: its severity and
// its pre-serialized line, without a trailing newline. The sink writes the
// line verbatim; any timestamp inside it is irrelevant to rotation.
type Record struct {
	Level Level
	Data  []byte
}

// Sink receives structured log records, buffers them, writes them to
// date-stamped files, rotates at calendar-day boundaries, archives closed
// files and deletes files past the retention window.
//
// All runtime state is owned by a single worker goroutine; records are
// handed over one at a time, so no two state transitions ever interleave
// against the same stream. Every recoverable failure is reported through
// the configured callback (or standard error) and none crosses the public
// boundary.
//
// Basic usage:
//
//	cfg := hemera.DefaultConfig()
//	cfg.Directory = "/var/log/myapp"
//	cfg.Filename = "app"
//	sink, err := hemera.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//	sink.Handle(hemera.Record{Level: hemera.LevelInfo, Data: []byte(`{"msg":"started"}`)})
type Sink struct {
	cfg Config

	input chan Record
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once

	// Cached wall clock, used unless cfg.Clock is set.
	timeCache *timecache.TimeCache

	// Worker-owned state. Only the worker goroutine touches these.
	activeDate string
	dest       destination
	entries    [][]byte
	flushTimer *time.Timer
	timerArmed bool

	// Telemetry
	recordsIn       atomic.Uint64
	recordsFiltered atomic.Uint64
	recordsWritten  atomic.Uint64
	bytesWritten    atomic.Uint64
	flushes         atomic.Uint64
	writeErrors     atomic.Uint64
	rotations       atomic.Uint64
	filesArchived   atomic.Uint64
	filesDeleted    atomic.Uint64
	usingFallback   atomic.Bool
}

// New creates a Sink: it corrects configuration anomalies, ensures the log
// and archive directories exist, runs the retention pass once, opens the
// stream for today's date and starts the worker.
//
// Only an empty Directory is an error. Everything else degrades safely: an
// unwritable directory is reported and writes fall back to standard error.
func New(cfg Config) (*Sink, error) {
	if cfg.Directory == "" {
		return nil, errors.New("directory cannot be empty")
	}

	s := &Sink{
		cfg:   cfg,
		input: make(chan Record),
		done:  make(chan struct{}),
	}
	s.cfg.normalize(s.report)

	if s.cfg.Clock == nil {
		s.timeCache = timecache.NewWithResolution(time.Millisecond)
	}

	s.ensureDirectory(s.cfg.Directory)
	if s.cfg.ArchiveDirectory != s.cfg.Directory {
		s.ensureDirectory(s.cfg.ArchiveDirectory)
	}
	s.cleanupOldFiles(s.now())

	s.activeDate = s.currentDate()
	s.dest = s.openDestination(buildLogPath(s.cfg.Directory, s.cfg.Filename, s.activeDate))

	s.flushTimer = time.NewTimer(s.cfg.FlushInterval)
	if !s.flushTimer.Stop() {
		<-s.flushTimer.C
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

// run is the worker loop. It serializes records, deferred flushes and
// shutdown onto one goroutine; between its suspension points every state
// transition is atomic with respect to the others.
func (s *Sink) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.shutdown()
			return
		case rec := <-s.input:
			s.process(rec)
		case <-s.flushTimer.C:
			s.timerArmed = false
			s.flush()
		}
	}
}

// Handle submits one record to the sink. The record's data is copied, so
// the caller may reuse the slice. Handle blocks until the worker has taken
// the record; it returns ErrClosed once Close has begun.
func (s *Sink) Handle(rec Record) error {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	rec.Data = data
	return s.HandleOwned(rec)
}

// HandleOwned submits one record with ownership transfer: the caller
// promises not to reuse rec.Data after the call. This avoids the copy that
// Handle makes, for producers that already allocate per record.
func (s *Sink) HandleOwned(rec Record) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.input <- rec:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Write implements io.Writer so the sink plugs into log.SetOutput and any
// framework that writes pre-formatted lines. Each chunk enters as one
// record at LevelInfo; a trailing newline is stripped because the sink adds
// its own.
func (s *Sink) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	data = bytes.TrimSuffix(data, []byte{'\n'})

	if err := s.HandleOwned(Record{Level: LevelInfo, Data: data}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close flushes buffered records, closes the stream, archives every
// non-current log file and stops the worker. It never hangs on in-flight
// work being abandoned: the worker finishes its current operation first.
// Close is idempotent; failures during shutdown are reported, not returned.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.timeCache != nil {
			s.timeCache.Stop()
		}
	})
	return nil
}

// now returns the sink's current time, from the configured Clock or the
// cached wall clock.
func (s *Sink) now() time.Time {
	if s.cfg.Clock != nil {
		return s.cfg.Clock()
	}
	return s.timeCache.CachedTime()
}

// currentDate returns the local calendar date as YYYY-MM-DD.
func (s *Sink) currentDate() string {
	return s.now().Format(dateLayout)
}

// report delivers a recoverable failure to the error callback, or to
// standard error when none is set.
func (s *Sink) report(operation string, err error) {
	if s.cfg.ErrorCallback != nil {
		s.cfg.ErrorCallback(operation, err)
		return
	}
	fmt.Fprintf(os.Stderr, "hemera: %s: %v\n", operation, err)
}

// Stats is a snapshot of the sink's operational counters.
type Stats struct {
	RecordsIn       uint64 `json:"records_in"`       // Records submitted
	RecordsFiltered uint64 `json:"records_filtered"` // Records discarded by the level filter
	RecordsWritten  uint64 `json:"records_written"`  // Records flushed to the destination
	BytesWritten    uint64 `json:"bytes_written"`    // Bytes flushed to the destination
	Flushes         uint64 `json:"flushes"`          // Completed flush operations
	WriteErrors     uint64 `json:"write_errors"`     // Flushes that failed and were dropped
	Rotations       uint64 `json:"rotations"`        // Day-boundary rotations performed
	FilesArchived   uint64 `json:"files_archived"`   // Log files packaged into containers
	FilesDeleted    uint64 `json:"files_deleted"`    // Files removed by retention or FormatNone
	UsingFallback   bool   `json:"using_fallback"`   // Whether writes currently go to stderr
}

// Stats returns current counters. Safe to call concurrently, including
// after Close.
func (s *Sink) Stats() Stats {
	return Stats{
		RecordsIn:       s.recordsIn.Load(),
		RecordsFiltered: s.recordsFiltered.Load(),
		RecordsWritten:  s.recordsWritten.Load(),
		BytesWritten:    s.bytesWritten.Load(),
		Flushes:         s.flushes.Load(),
		WriteErrors:     s.writeErrors.Load(),
		Rotations:       s.rotations.Load(),
		FilesArchived:   s.filesArchived.Load(),
		FilesDeleted:    s.filesDeleted.Load(),
		UsingFallback:   s.usingFallback.Load(),
	}
}
