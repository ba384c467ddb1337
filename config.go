// config.go: Sink configuration, defaults and file loading
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultRetryCount = 3
	defaultRetryDelay = 10 * time.Millisecond
)

// Config holds the immutable configuration of one Sink. Start from
// DefaultConfig and override what you need; New corrects anomalies to safe
// values with a warning instead of failing.
type Config struct {
	// Directory is where log files are written. Required.
	Directory string

	// ArchiveDirectory is where archive containers are written.
	// Defaults to Directory.
	ArchiveDirectory string

	// Filename is the base of every file name: "<Filename>-<date>.log".
	// Path components are stripped; an unusable value falls back to "log".
	Filename string

	// RetentionDays is the age in days past which files are deleted.
	// Zero deletes everything before today; a negative value disables the
	// retention pass entirely.
	RetentionDays int

	// BufferSize is the number of records held in memory before a forced
	// flush. Values <= 0 use 100.
	BufferSize int

	// FlushInterval bounds how long a buffered record waits before being
	// written. Values <= 0 use one second.
	FlushInterval time.Duration

	// Level is the minimum severity written; LevelSilent suppresses all
	// writes. Zero means LevelInfo.
	Level Level

	// ArchiveFormat selects the container for closed log files. An empty
	// value means FormatZip; FormatNone deletes instead of archiving.
	ArchiveFormat ArchiveFormat

	// CompressionLevel is the DEFLATE level 0-9 used by zip and tar.gz
	// containers. Out-of-range values fall back to 6.
	CompressionLevel int

	// CleanupOnRotation runs the retention pass at each day-boundary
	// rotation, in addition to the pass at construction.
	CleanupOnRotation bool

	// ArchiveOnRotation archives non-current log files at each rotation
	// instead of waiting for Close.
	ArchiveOnRotation bool

	// FileMode is the permission of created log files (default 0644).
	FileMode os.FileMode

	// ErrorCallback receives every recoverable failure and configuration
	// warning, tagged with the operation that failed. When nil, reports go
	// to standard error. No failure is ever returned from Handle or Close.
	ErrorCallback func(operation string, err error)

	// Clock overrides the time source. Nil uses a cached wall clock. Each
	// Sink owns its clock, so instances never interfere.
	Clock func() time.Time
}

// DefaultConfig returns the documented defaults: base name "log", 7-day
// retention, 100-record buffer, 1s flush interval, info level, zip archives
// at compression level 6, cleanup on rotation enabled.
func DefaultConfig() Config {
	return Config{
		Filename:          defaultBaseName,
		RetentionDays:     7,
		BufferSize:        100,
		FlushInterval:     time.Second,
		Level:             LevelInfo,
		ArchiveFormat:     FormatZip,
		CompressionLevel:  6,
		CleanupOnRotation: true,
		FileMode:          0644,
	}
}

// normalize corrects configuration anomalies in place, reporting each
// correction. It never fails: a sink must be constructible from any config
// with a usable directory.
func (c *Config) normalize(report func(operation string, err error)) {
	if c.Filename == "" {
		c.Filename = defaultBaseName
	} else if base, safe := sanitizeBase(c.Filename); !safe {
		report("config", fmt.Errorf("unsafe filename %q, using %q", c.Filename, base))
		c.Filename = base
	}

	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	if c.Level == 0 {
		c.Level = LevelInfo
	}

	switch c.ArchiveFormat {
	case FormatZip, FormatTarGz, FormatTar, FormatNone:
	case "":
		c.ArchiveFormat = FormatZip
	default:
		report("config", fmt.Errorf("unknown archive format %q, using %q", c.ArchiveFormat, FormatZip))
		c.ArchiveFormat = FormatZip
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		report("config", fmt.Errorf("compression level %d out of range 0-9, using 6", c.CompressionLevel))
		c.CompressionLevel = 6
	}

	if c.FileMode == 0 {
		c.FileMode = 0644
	}
	if c.ArchiveDirectory == "" {
		c.ArchiveDirectory = c.Directory
	}
}

// fileConfig is the TOML shape of a sink config file. Pointer fields
// distinguish absent keys from zero values so file settings overlay
// DefaultConfig instead of erasing it.
type fileConfig struct {
	Directory         *string `toml:"directory"`
	ArchiveDirectory  *string `toml:"archive_directory"`
	Filename          *string `toml:"filename"`
	RetentionDays     *int    `toml:"retention_days"`
	BufferSize        *int    `toml:"buffer_size"`
	FlushIntervalMs   *int    `toml:"flush_interval_ms"`
	Level             *string `toml:"level"`
	ArchiveFormat     *string `toml:"archive_format"`
	CompressionLevel  *int    `toml:"compression_level"`
	CleanupOnRotation *bool   `toml:"cleanup_on_rotation"`
	ArchiveOnRotation *bool   `toml:"archive_on_rotation"`
}

// LoadConfig reads a TOML sink configuration and applies it over
// DefaultConfig. Unlike New, which corrects anomalies at runtime, loading
// is strict: an unreadable file, an unknown level or an unknown archive
// format is an error.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("failed to load config %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if fc.Directory != nil {
		cfg.Directory = *fc.Directory
	}
	if fc.ArchiveDirectory != nil {
		cfg.ArchiveDirectory = *fc.ArchiveDirectory
	}
	if fc.Filename != nil {
		cfg.Filename = *fc.Filename
	}
	if fc.RetentionDays != nil {
		cfg.RetentionDays = *fc.RetentionDays
	}
	if fc.BufferSize != nil {
		cfg.BufferSize = *fc.BufferSize
	}
	if fc.FlushIntervalMs != nil {
		cfg.FlushInterval = time.Duration(*fc.FlushIntervalMs) * time.Millisecond
	}
	if fc.Level != nil {
		level, err := ParseLevel(*fc.Level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid level in %q: %w", path, err)
		}
		cfg.Level = level
	}
	if fc.ArchiveFormat != nil {
		format := ArchiveFormat(*fc.ArchiveFormat)
		switch format {
		case FormatZip, FormatTarGz, FormatTar, FormatNone:
			cfg.ArchiveFormat = format
		default:
			return Config{}, fmt.Errorf("invalid archive format %q in %q", *fc.ArchiveFormat, path)
		}
	}
	if fc.CompressionLevel != nil {
		cfg.CompressionLevel = *fc.CompressionLevel
	}
	if fc.CleanupOnRotation != nil {
		cfg.CleanupOnRotation = *fc.CleanupOnRotation
	}
	if fc.ArchiveOnRotation != nil {
		cfg.ArchiveOnRotation = *fc.ArchiveOnRotation
	}

	return cfg, nil
}

// retryFileOperation executes a filesystem operation with bounded retries.
// Antivirus scans, network shares and overlay filesystems all produce
// transient failures that a short retry absorbs without masking real errors.
func retryFileOperation(operation func() error, retryCount int, retryDelay time.Duration) error {
	if retryCount <= 0 {
		retryCount = defaultRetryCount
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	var lastErr error
	for i := 0; i < retryCount; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		// On the last attempt, don't wait - fail fast
		if i < retryCount-1 {
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("operation failed after %d retries: %v", retryCount, lastErr)
}
