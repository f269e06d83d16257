package pipelineindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Watcher rebuilds the index whenever something under Root changes.
type Watcher struct {
	Builder  *Builder
	Root     string
	Out      string
	Debounce time.Duration
	// OnBuild, when set, sees every rebuild result.
	OnBuild func(Index, error)
}

func NewWatcher(b *Builder, root, out string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	b.Exclude(filepath.Base(out))
	return &Watcher{Builder: b, Root: root, Out: out, Debounce: debounce}
}

// Run writes the index once, then keeps it current until ctx is done.
// Build failures are logged and retried on the next change.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipelineindex: watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.Root); err != nil {
		return err
	}
	w.rebuild()

	trigger := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.events(ctx, fw, trigger) })
	g.Go(func() error { return w.rebuilds(ctx, trigger) })
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) events(ctx context.Context, fw *fsnotify.Watcher, trigger chan<- struct{}) error {
	log := w.Builder.Log
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || w.Builder.skipped(filepath.Base(ev.Name)) {
				continue
			}
			if abs(ev.Name) == abs(w.Out) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						log.Warn("pipelineindex: watch new dir", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			log.Debug("pipelineindex: change", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			select {
			case trigger <- struct{}{}:
			default:
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("pipelineindex: watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) rebuilds(ctx context.Context, trigger <-chan struct{}) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-trigger:
			timer.Reset(w.Debounce)
		case <-timer.C:
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	idx, err := w.Builder.Rebuild(w.Root, w.Out)
	if err != nil {
		w.Builder.Log.Error("pipelineindex: rebuild failed", zap.String("root", w.Root), zap.Error(err))
	} else {
		w.Builder.Log.Info("pipelineindex: written", zap.String("out", w.Out), zap.Int("pipelines", len(idx)))
	}
	if w.OnBuild != nil {
		w.OnBuild(idx, err)
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.Builder.skipped(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("pipelineindex: watch %s: %w", path, err)
		}
		return nil
	})
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
