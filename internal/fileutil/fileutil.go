// Package fileutil provides the file-system plumbing of the conversion
// driver: backup-path derivation, file copying, and locating metadata
// files under a base directory.
package fileutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MetaFileName is the metadata file name the driver looks for.
const MetaFileName = "meta.xml"

// BackupPath derives an unused backup path next to the given file:
// meta.bak, then meta(1).bak, meta(2).bak and so on until a free name is
// found. The highest number is the latest backup.
func BackupPath(path string) string {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	candidate := filepath.Join(dir, base+".bak")
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s(%d).bak", base, i))
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Copy copies a file, creating or truncating the destination. Both
// handles are closed on every path.
func Copy(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(to)
		return fmt.Errorf("failed to copy %s to %s: %w", from, to, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", to, err)
	}
	return nil
}

// FindMetaFiles walks the base directory recursively and returns every
// file named meta.xml, in walk order.
func FindMetaFiles(basePath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == MetaFileName {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", basePath, err)
	}
	return files, nil
}

// SiblingWithSuffix replaces the ".xml" extension of a path with the
// given suffix, e.g. ".fromMets.rdf.xml".
func SiblingWithSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, ".xml") + suffix
}
