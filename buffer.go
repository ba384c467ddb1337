// buffer.go: Record buffering and deferred flush scheduling
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import "fmt"

// The buffer and its timer are owned exclusively by the worker goroutine.
// That ownership is what makes the scheduler a plain state machine: Idle
// (empty buffer, timer disarmed), Accumulating (non-empty, timer armed) and
// Flushing never interleave, so at most one flush is ever in flight and
// flush requests coalesce by construction.

// appendEntry adds one pre-serialized record to the buffer. Reaching the
// configured capacity flushes immediately; otherwise a deferred flush is
// scheduled so no record waits longer than FlushInterval.
func (s *Sink) appendEntry(data []byte) {
	s.entries = append(s.entries, data)
	if len(s.entries) >= s.cfg.BufferSize {
		s.flush()
		return
	}
	s.scheduleFlush()
}

// scheduleFlush arms the one-shot flush timer. A timer that is already
// pending is left alone: the interval bounds the wait of the oldest
// buffered record, not the newest.
func (s *Sink) scheduleFlush() {
	if s.timerArmed {
		return
	}
	s.flushTimer.Reset(s.cfg.FlushInterval)
	s.timerArmed = true
}

// disarmTimer cancels a pending deferred flush, draining the channel if the
// timer fired before it could be stopped.
func (s *Sink) disarmTimer() {
	if !s.timerArmed {
		return
	}
	if !s.flushTimer.Stop() {
		select {
		case <-s.flushTimer.C:
		default:
		}
	}
	s.timerArmed = false
}

// flush writes every buffered record to the destination as a single chunk,
// preserving insertion order. The buffer is swapped out before the write so
// records arriving during an in-flight write land in the next batch.
//
// Delivery is at-most-once: a failed write is reported and the batch is
// still considered drained, so a persistently broken destination cannot
// grow memory or duplicate lines.
func (s *Sink) flush() {
	s.disarmTimer()
	if len(s.entries) == 0 {
		return
	}

	entries := s.entries
	s.entries = nil

	size := 0
	for _, e := range entries {
		size += len(e) + 1
	}
	chunk := make([]byte, 0, size)
	for _, e := range entries {
		chunk = append(chunk, e...)
		chunk = append(chunk, '\n')
	}

	n, err := s.dest.Write(chunk)
	if err != nil {
		s.writeErrors.Add(1)
		s.report("write", fmt.Errorf("failed to write %d records: %v", len(entries), err))
		return
	}

	s.flushes.Add(1)
	s.recordsWritten.Add(uint64(len(entries)))
	if n > 0 {
		s.bytesWritten.Add(uint64(n))
	}
}
