package pipelineindex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeydtaylor/vblocks/pkg/codec"
)

// WriteFile stores idx as UTF-8 JSON, replacing path atomically.
func WriteFile(path string, idx Index) error {
	if idx == nil {
		idx = Index{}
	}
	b, err := codec.JSON.Marshal(idx)
	if err != nil {
		return fmt.Errorf("pipelineindex: encode: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Rebuild builds root and writes the result to out.
func (b *Builder) Rebuild(root, out string) (Index, error) {
	idx, err := b.Build(root)
	if err != nil {
		return nil, err
	}
	return idx, WriteFile(out, idx)
}
