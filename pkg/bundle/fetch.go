// Package bundle prepares the static Visual Blocks web app: it downloads the
// versioned zip, unpacks it under a temp directory and reports the site root.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"go.uber.org/zap"
)

const (
	baseDirName = "visual-blocks-colab"
	archiveName = "visual_blocks.zip"
	siteDirName = "build"
)

var (
	ErrTooLarge = errors.New("bundle: archive exceeds size limit")
	ErrNoSite   = errors.New("bundle: archive has no build/ directory")
	ErrLocked   = errors.New("bundle: another process is preparing the bundle")
)

// Fetcher downloads and unpacks the bundle described by a manifest.Bundle.
type Fetcher struct {
	Client *http.Client
	Log    *zap.Logger
}

func NewFetcher(log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{Client: &http.Client{Timeout: 5 * time.Minute}, Log: log}
}

// Prepare returns the directory to serve. A configured Path is used as is;
// otherwise <tmp>/visual-blocks-colab is recreated from the archive.
func (f *Fetcher) Prepare(ctx context.Context, b manifest.Bundle) (string, error) {
	if b.Path != "" {
		st, err := os.Stat(b.Path)
		if err != nil {
			return "", fmt.Errorf("bundle path: %w", err)
		}
		if !st.IsDir() {
			return "", fmt.Errorf("bundle path %s is not a directory", b.Path)
		}
		f.Log.Info("bundle: using local site", zap.String("path", b.Path))
		return b.Path, nil
	}

	base := filepath.Join(b.TmpDir, baseDirName)
	unlock, err := acquireLock(ctx, base+".lock", time.Duration(b.LockTimeout)*time.Millisecond)
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := os.RemoveAll(base); err != nil {
		return "", fmt.Errorf("bundle: reset %s: %w", base, err)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("bundle: create %s: %w", base, err)
	}

	src := b.BundleURL()
	archive := filepath.Join(base, archiveName)
	start := time.Now()
	n, err := f.download(ctx, src, archive, b.MaxBytes)
	if err != nil {
		return "", err
	}
	files, err := extract(archive, base, b.MaxExtractedBytes)
	if err != nil {
		return "", err
	}
	site := filepath.Join(base, siteDirName)
	if st, err := os.Stat(site); err != nil || !st.IsDir() {
		return "", fmt.Errorf("%w (%s)", ErrNoSite, src)
	}
	f.Log.Info("bundle: ready",
		zap.String("url", src),
		zap.Int64("bytes", n),
		zap.Int("files", files),
		zap.String("site_root", site),
		zap.Duration("took", time.Since(start)),
	)
	return site, nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string, limit int64) (int64, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "vblocks")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bundle: download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return 0, fmt.Errorf("bundle: download failed: %s\n%s", resp.Status, strings.TrimSpace(string(body)))
	}
	if limit > 0 && resp.ContentLength > limit {
		return 0, ErrTooLarge
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("bundle: cannot create %s: %w", dest, err)
	}
	defer out.Close()

	r := io.Reader(resp.Body)
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit+1)
	}
	n, err := io.Copy(out, r)
	if err != nil {
		return n, fmt.Errorf("bundle: download read failed: %w", err)
	}
	if limit > 0 && n > limit {
		return n, ErrTooLarge
	}
	return n, out.Close()
}

// acquireLock serializes preparation across processes sharing a tmp dir.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return func() {}, err
	}
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("bundle: cannot acquire lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("%w (lock: %s)", ErrLocked, path)
		}
		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
