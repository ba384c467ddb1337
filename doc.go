// Package hemera is a date-stamped log-file sink: it receives structured
// records from any logging library, buffers them, writes them to files named
// for the current calendar date, rotates at day boundaries, archives closed
// files into zip or tar containers and deletes files past a retention window.
//
// Hemera never loses a record except through its explicit level filter, and
// never lets an I/O failure cross its public boundary: a sink that cannot
// open its file falls back to standard error, a failed write is reported and
// dropped, and Close always completes.
//
// # Quick Start
//
//	cfg := hemera.DefaultConfig()
//	cfg.Directory = "/var/log/myapp"
//	cfg.Filename = "app"
//	sink, err := hemera.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//
//	sink.Handle(hemera.Record{Level: hemera.LevelInfo, Data: []byte(`{"msg":"started"}`)})
//
// # File Layout
//
// Log files are named <filename>-<YYYY-MM-DD>.log. When a newer date's file
// becomes active, the previous file is eligible for archiving into
// <filename>-<YYYY-MM-DD>.zip, .tar.gz or .tar, depending on ArchiveFormat;
// FormatNone deletes closed files instead. Files whose names do not match
// this pattern are never touched by maintenance.
//
// # Rotation
//
// Rotation is driven by the wall-clock date at the moment a record is
// processed. On a date change the sink drains its buffer to the old file,
// closes it, optionally runs retention cleanup and archiving, then opens the
// new date's file. Records are written in submission order and never to the
// wrong date's file.
//
// # Buffering
//
// Records accumulate in memory and are written as a single chunk when the
// buffer reaches BufferSize, when the oldest buffered record has waited
// FlushInterval, and at rotation and Close. Delivery is at-most-once: a
// failed write is reported through ErrorCallback and not retried.
//
// # Severity
//
// Levels use pino-compatible ordinals (trace 10 through fatal 60). A record
// is written iff its level is at least the configured minimum; LevelSilent
// as the minimum suppresses all writes.
//
// # Standard Library Integration
//
// Sink implements io.Writer, entering each chunk at LevelInfo:
//
//	log.SetOutput(sink)
//
// # Configuration Files
//
// LoadConfig reads a TOML file over DefaultConfig:
//
//	directory = "/var/log/myapp"
//	filename = "app"
//	retention_days = 14
//	archive_format = "tar.gz"
//	level = "warn"
//
// # Error Handling
//
// Every recoverable failure (directory creation, stream creation, write,
// archive, cleanup) is reported with the operation name through
// ErrorCallback, or written to standard error when no callback is set:
//
//	cfg.ErrorCallback = func(operation string, err error) {
//		metrics.Counter("sink_errors").WithTag("op", operation).Inc()
//	}
package hemera
