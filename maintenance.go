// maintenance.go: Directory creation and retention cleanup
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ensureDirectory creates a directory and its parents if absent. Failure is
// reported, never returned: the sink must stay constructible even when the
// path is unwritable, and a later open surfaces the problem through the
// console fallback.
func (s *Sink) ensureDirectory(path string) {
	if path == "" {
		return
	}
	err := retryFileOperation(func() error {
		return os.MkdirAll(path, 0750)
	}, defaultRetryCount, defaultRetryDelay)
	if err != nil {
		s.report("directory_create", fmt.Errorf("failed to create directory %q: %v", path, err))
	}
}

// cleanupOldFiles deletes log and archive files whose embedded date precedes
// today minus the retention window. A negative retention disables the pass
// entirely; it is never clamped, so a misconfigured sink deletes nothing.
func (s *Sink) cleanupOldFiles(today time.Time) {
	if s.cfg.RetentionDays < 0 {
		return
	}
	cutoff := today.AddDate(0, 0, -s.cfg.RetentionDays).Format(dateLayout)

	s.cleanupDirectory(s.cfg.Directory, cutoff)

	if archiveDir := s.cfg.ArchiveDirectory; archiveDir != "" && archiveDir != s.cfg.Directory {
		if _, err := os.Stat(archiveDir); err == nil {
			s.cleanupDirectory(archiveDir, cutoff)
		}
	}
}

// cleanupDirectory scans one directory and removes expired files matching
// the sink's base name. Per-file errors are reported and skipped; only a
// failed directory listing aborts the pass for that directory.
func (s *Sink) cleanupDirectory(dir, cutoff string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.report("cleanup_scan", fmt.Errorf("failed to scan %q: %v", dir, err))
		return
	}

	prefix := s.cfg.Filename + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		date, ok := extractDate(name)
		if !ok || date >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			s.report("cleanup_remove", fmt.Errorf("failed to remove expired file %q: %v", name, err))
			continue
		}
		s.filesDeleted.Add(1)
	}
}
