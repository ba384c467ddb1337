// hemera_bench_test.go: Ingestion benchmarks
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"os"
	"testing"
	"time"
)

func benchSink(b *testing.B) *Sink {
	b.Helper()
	dir, err := os.MkdirTemp("", "hemera_bench")
	if err != nil {
		b.Fatalf("MkdirTemp failed: %v", err)
	}
	b.Cleanup(func() { _ = os.RemoveAll(dir) })

	cfg := DefaultConfig()
	cfg.Directory = dir
	cfg.Filename = "bench"
	cfg.BufferSize = 8192 // Large enough that flushes stay off the hot path
	cfg.FlushInterval = time.Second
	cfg.ErrorCallback = func(string, error) {}

	sink, err := New(cfg)
	if err != nil {
		b.Fatalf("New() failed: %v", err)
	}
	b.Cleanup(func() { _ = sink.Close() })
	return sink
}

// BenchmarkHandle measures record submission with the defensive copy.
func BenchmarkHandle(b *testing.B) {
	sink := benchSink(b)
	data := []byte(`{"level":30,"msg":"benchmark record"}`)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = sink.Handle(Record{Level: LevelInfo, Data: data})
		}
	})
}

// BenchmarkHandleOwned measures submission with ownership transfer: each
// iteration allocates its own slice, as a real per-record producer would.
func BenchmarkHandleOwned(b *testing.B) {
	sink := benchSink(b)
	line := `{"level":30,"msg":"benchmark record"}`

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = sink.HandleOwned(Record{Level: LevelInfo, Data: []byte(line)})
		}
	})
}

// BenchmarkWrite measures the io.Writer adapter path.
func BenchmarkWrite(b *testing.B) {
	sink := benchSink(b)
	data := []byte("benchmark line through the writer adapter\n")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = sink.Write(data) // Ignore errors in benchmark
		}
	})
}

// BenchmarkFilteredRecord measures the cost of a record the level filter
// discards before it reaches the buffer.
func BenchmarkFilteredRecord(b *testing.B) {
	sink := benchSink(b)
	data := []byte(`{"level":20,"msg":"discarded"}`)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = sink.Handle(Record{Level: LevelDebug, Data: data})
		}
	})
}
