// rotation.go: The rotation coordinator state machine
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import "fmt"

// process runs the per-record transition: level filter, rotation check,
// append. Worker goroutine only.
func (s *Sink) process(rec Record) {
	s.recordsIn.Add(1)

	if !rec.Level.enabled(s.cfg.Level) {
		s.recordsFiltered.Add(1)
		return
	}

	// Rotation is driven by the wall-clock date at processing time, never
	// by a timestamp inside the record. Any date change triggers it, a
	// clock stepped backward included.
	if today := s.currentDate(); today != s.activeDate {
		s.rotate(today)
	}

	s.appendEntry(rec.Data)
}

// rotate closes out the stream for the previous date and opens the stream
// for today. The old buffer is drained against the old stream before it is
// closed, so no record is ever misfiled to the wrong date's file.
func (s *Sink) rotate(today string) {
	s.flush()
	if err := s.dest.Close(); err != nil {
		s.report("stream_close", fmt.Errorf("failed to close stream for %s: %v", s.activeDate, err))
	}

	if s.cfg.CleanupOnRotation {
		s.cleanupOldFiles(s.now())
	}
	if s.cfg.ArchiveOnRotation {
		s.archiveDirectoryFiles(today)
	}

	s.dest = s.openDestination(buildLogPath(s.cfg.Directory, s.cfg.Filename, today))
	s.activeDate = today
	s.rotations.Add(1)
}

// shutdown runs the terminal transition: final flush, stream close, and the
// archive pass over every non-current log file. Shutdown is the last chance
// to package previous days' leftovers, so the pass runs regardless of
// ArchiveOnRotation; with FormatNone it deletes those files outright.
// Every step reports failures and keeps going.
func (s *Sink) shutdown() {
	s.flush()
	if err := s.dest.Close(); err != nil {
		s.report("stream_close", fmt.Errorf("failed to close stream for %s: %v", s.activeDate, err))
	}
	s.archiveDirectoryFiles(s.currentDate())
}
