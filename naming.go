// naming.go: Calendar dates and canonical file names
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"path/filepath"
	"strings"
	"time"
)

// dateLayout is the calendar-date format embedded in every file name.
const dateLayout = "2006-01-02"

// defaultBaseName is used when the configured base name is unusable.
const defaultBaseName = "log"

const (
	extLog   = ".log"
	extZip   = ".zip"
	extTarGz = ".tar.gz"
	extTar   = ".tar"
)

// knownExtensions lists every extension rotation and maintenance recognize.
// extTarGz precedes extTar so the longer suffix wins.
var knownExtensions = []string{extLog, extZip, extTarGz, extTar}

// buildLogPath returns the log file path for a base name and calendar date:
// <dir>/<base>-<YYYY-MM-DD>.log
func buildLogPath(dir, base, date string) string {
	return filepath.Join(dir, base+"-"+date+extLog)
}

// buildArchivePath returns the archive container path for a base name,
// calendar date and archive format.
func buildArchivePath(dir, base, date string, format ArchiveFormat) string {
	return filepath.Join(dir, base+"-"+date+formatExtension(format))
}

// extractDate parses the trailing "-YYYY-MM-DD.<ext>" of a rotated file name
// and returns the embedded date. Files that do not match the naming
// convention exactly are never touched by maintenance or archiving, so the
// second return value gates every scan.
func extractDate(name string) (string, bool) {
	var ext string
	for _, e := range knownExtensions {
		if strings.HasSuffix(name, e) {
			ext = e
			break
		}
	}
	if ext == "" {
		return "", false
	}

	stem := strings.TrimSuffix(name, ext)
	if len(stem) < len(dateLayout)+1 {
		return "", false
	}
	date := stem[len(stem)-len(dateLayout):]
	if stem[len(stem)-len(dateLayout)-1] != '-' {
		return "", false
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// sanitizeBase strips any path components from a configured base name so a
// buggy or hostile caller cannot escape the log directory. It returns the
// usable base name and whether the input was already safe; an empty, "." or
// ".." result falls back to defaultBaseName.
func sanitizeBase(name string) (string, bool) {
	cleaned := name
	if i := strings.LastIndexAny(cleaned, `/\`); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	switch cleaned {
	case "", ".", "..":
		return defaultBaseName, false
	}
	return cleaned, cleaned == name
}
