// archive.go: Packaging closed log files into compressed containers
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// ArchiveFormat selects the container a closed log file is packaged into.
type ArchiveFormat string

const (
	// FormatZip stores the file in a zip container with per-entry DEFLATE.
	FormatZip ArchiveFormat = "zip"
	// FormatTarGz stores the file in a tar container compressed as a whole.
	FormatTarGz ArchiveFormat = "tar.gz"
	// FormatTar stores the file in an uncompressed tar container.
	FormatTar ArchiveFormat = "tar"
	// FormatNone produces no container: archived files are simply deleted.
	FormatNone ArchiveFormat = "none"
)

// formatExtension returns the file extension for an archive format, empty
// for FormatNone.
func formatExtension(format ArchiveFormat) string {
	switch format {
	case FormatZip:
		return extZip
	case FormatTarGz:
		return extTarGz
	case FormatTar:
		return extTar
	}
	return ""
}

// archiveFile packages one closed log file into targetPath and removes the
// source. The container is written to a temporary file, finalized, closed
// and atomically renamed before the source is touched, so a crash or error
// mid-archive always leaves the source intact.
//
// A source that vanished before archiving (a race with a concurrent cleanup
// pass) is reported and tolerated. A failed source removal after a
// successful archive is reported but does not undo the archive.
func (s *Sink) archiveFile(sourcePath, targetPath string) error {
	if s.cfg.ArchiveFormat == FormatNone {
		if err := os.Remove(sourcePath); err != nil {
			return fmt.Errorf("failed to remove %q: %v", sourcePath, err)
		}
		s.filesDeleted.Add(1)
		return nil
	}

	source, err := os.Open(sourcePath) // #nosec G304 -- sourcePath comes from the sink's own directory scan
	if err != nil {
		if os.IsNotExist(err) {
			s.report("archive_vanished", fmt.Errorf("source %q vanished before archiving", sourcePath))
			return nil
		}
		return fmt.Errorf("failed to open source %q: %v", sourcePath, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %v", sourcePath, err)
	}

	tempPath := targetPath + ".tmp"
	target, err := os.Create(tempPath) // #nosec G304 -- tempPath is internally generated
	if err != nil {
		return fmt.Errorf("failed to create archive %q: %v", tempPath, err)
	}

	if err := s.writeContainer(target, source, info); err != nil {
		_ = target.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write archive %q: %v", tempPath, err)
	}

	if err := target.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close archive %q: %v", tempPath, err)
	}

	// The rename publishes the container; only past this point may the
	// source be deleted.
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %q to %q: %v", tempPath, targetPath, err)
	}

	if err := os.Remove(sourcePath); err != nil {
		s.report("archive_cleanup", fmt.Errorf("failed to remove archived source %q: %v", sourcePath, err))
	}
	return nil
}

// writeContainer streams the source file into out as the container's sole
// entry, under its own base name, and finalizes every layer of the writer
// stack before returning.
func (s *Sink) writeContainer(out *os.File, source *os.File, info os.FileInfo) error {
	entryName := filepath.Base(source.Name())

	switch s.cfg.ArchiveFormat {
	case FormatZip:
		zw := zip.NewWriter(out)
		level := s.cfg.CompressionLevel
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		})
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entryName,
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		})
		if err != nil {
			return err
		}
		if _, err := io.Copy(entry, source); err != nil {
			return err
		}
		return zw.Close()

	case FormatTarGz:
		gz, err := gzip.NewWriterLevel(out, s.cfg.CompressionLevel)
		if err != nil {
			return err
		}
		tw := tar.NewWriter(gz)
		if err := writeTarEntry(tw, source, info, entryName); err != nil {
			return err
		}
		if err := tw.Close(); err != nil {
			return err
		}
		return gz.Close()

	case FormatTar:
		tw := tar.NewWriter(out)
		if err := writeTarEntry(tw, source, info, entryName); err != nil {
			return err
		}
		return tw.Close()
	}

	return fmt.Errorf("unsupported archive format %q", s.cfg.ArchiveFormat)
}

func writeTarEntry(tw *tar.Writer, source io.Reader, info os.FileInfo, name string) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, source)
	return err
}

// archiveDirectoryFiles archives every "<base>-<date>.log" file in the log
// directory except the one for currentDate. Each file is archived
// independently: a failure is reported and the scan moves on.
func (s *Sink) archiveDirectoryFiles(currentDate string) {
	entries, err := os.ReadDir(s.cfg.Directory)
	if err != nil {
		s.report("archive_scan", fmt.Errorf("failed to scan %q: %v", s.cfg.Directory, err))
		return
	}

	prefix := s.cfg.Filename + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, extLog) {
			continue
		}
		date, ok := extractDate(name)
		if !ok || date == currentDate {
			continue
		}

		sourcePath := filepath.Join(s.cfg.Directory, name)
		stem := strings.TrimSuffix(name, extLog)
		targetPath := filepath.Join(s.cfg.ArchiveDirectory, stem+formatExtension(s.cfg.ArchiveFormat))

		if err := s.archiveFile(sourcePath, targetPath); err != nil {
			s.report("archive", err)
			continue
		}
		if s.cfg.ArchiveFormat != FormatNone {
			s.filesArchived.Add(1)
		}
	}
}
