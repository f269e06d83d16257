package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extract unpacks every safe entry of archivePath under dest and returns the
// number of files written. A positive limit caps the total bytes written.
func extract(archivePath, dest string, limit int64) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("bundle: open archive: %w", err)
	}
	defer r.Close()

	n := 0
	remaining := limit
	for _, zf := range r.File {
		name := sanitizeArchivePath(zf.Name)
		if name == "" {
			return n, fmt.Errorf("bundle: unsafe entry %q", zf.Name)
		}
		target := filepath.Join(dest, name)
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if limit > 0 && zf.UncompressedSize64 > uint64(remaining) {
			return n, fmt.Errorf("%w: entry %s unpacks past %d bytes", ErrTooLarge, zf.Name, limit)
		}
		written, err := writeEntry(zf, target, remaining, limit > 0)
		if err != nil {
			return n, err
		}
		remaining -= written
		n++
	}
	return n, nil
}

// writeEntry copies one file, reading at most remaining+1 bytes when capped so
// a lying size header cannot get past the budget.
func writeEntry(zf *zip.File, target string, remaining int64, capped bool) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	rc, err := zf.Open()
	if err != nil {
		return 0, fmt.Errorf("bundle: open %s: %w", zf.Name, err)
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	src := io.Reader(rc)
	if capped {
		src = io.LimitReader(rc, remaining+1)
	}
	written, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		return written, fmt.Errorf("bundle: write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return written, err
	}
	if capped && written > remaining {
		return written, fmt.Errorf("%w: entry %s unpacks past the extraction limit", ErrTooLarge, zf.Name)
	}
	return written, nil
}

// sanitizeArchivePath rejects absolute paths and traversal sequences in archive entries.
func sanitizeArchivePath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	if name == "" || strings.HasPrefix(name, "/") {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return ""
		}
	}
	clean := filepath.Clean(name)
	if clean == "." || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return ""
	}
	return clean
}
