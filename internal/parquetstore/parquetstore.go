// Package parquetstore reads and writes the local columnar cache files.
// Each record kind is one Parquet file that is fully read and fully
// rewritten on every update; there is no append-only or delta format.
//
// Cache files written by older builds may lack columns that were added to a
// row struct later (e.g. ebirdUrl). Parquet schema conversion on read
// surfaces those as nulls, so both sides of a merge always materialize as
// the current row struct with structurally identical columns.
package parquetstore

import (
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/tphakala/birdweather-sync/internal/errors"
)

// EnsureDir creates the data directory if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Newf("failed to create data directory %s: %w", dir, err).
			Category(errors.CategoryFileIO).
			Component("parquetstore").
			Build()
	}
	return nil
}

// Exists reports whether a cache file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Age returns how long ago the cache file at path was last written,
// based on its modification time.
func Age(path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Newf("failed to stat cache file %s: %w", path, err).
			Category(errors.CategoryFileIO).
			Component("parquetstore").
			Build()
	}
	return time.Since(info.ModTime()), nil
}

// Load fully reads the cache file at path into rows of T.
func Load[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, errors.Newf("failed to read cache file %s: %w", path, err).
			Category(errors.CategoryFileParsing).
			Context("path_extension", "parquet").
			Component("parquetstore").
			Build()
	}
	return rows, nil
}

// Save fully rewrites the cache file at path with the given rows. The
// write goes through a temporary file and a rename so a crash mid-write
// never leaves a truncated cache behind.
func Save[T any](path string, rows []T) error {
	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, rows); err != nil {
		_ = os.Remove(tmp)
		return errors.Newf("failed to write cache file %s: %w", path, err).
			Category(errors.CategoryFileIO).
			Component("parquetstore").
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Newf("failed to replace cache file %s: %w", path, err).
			Category(errors.CategoryFileIO).
			Component("parquetstore").
			Build()
	}
	return nil
}
