// Package archive compresses driver backups. A compressed backup sits
// next to the plain one and is self-describing by extension.
package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// Suffix is appended to the backup path for the compressed variant.
const Suffix = ".xz"

// CompressFile writes an xz-compressed copy of the source file to
// srcPath + Suffix and returns the archive path.
func CompressFile(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	dstPath := srcPath + Suffix
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dstPath, err)
	}

	xzw, err := xz.NewWriter(dst)
	if err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to start xz stream: %w", err)
	}

	if _, err := io.Copy(xzw, src); err != nil {
		xzw.Close()
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to compress %s: %w", srcPath, err)
	}
	if err := xzw.Close(); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to finish xz stream: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dstPath, err)
	}
	return dstPath, nil
}

// DecompressFile expands an xz archive into the given destination path.
func DecompressFile(archivePath, dstPath string) error {
	src, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer src.Close()

	xzr, err := xz.NewReader(src)
	if err != nil {
		return fmt.Errorf("failed to read xz stream: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dstPath, err)
	}

	if _, err := io.Copy(dst, xzr); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return fmt.Errorf("failed to decompress %s: %w", archivePath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dstPath, err)
	}
	return nil
}
