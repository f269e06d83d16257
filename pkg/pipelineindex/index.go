// Package pipelineindex builds pipelines_index.json: one record per example
// pipeline found under a directory tree, pointing at the raw definition file,
// its screenshots and the project metadata.
package pipelineindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeydtaylor/vblocks/pkg/codec"
	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"go.uber.org/zap"
)

const highresSuffix = "_highres"

var ErrNotProject = errors.New("pipelineindex: definition has no project object")

// Index maps a pipeline key to its record.
type Index map[string]*Record

type Record struct {
	JSON        string         `json:"json"`
	Screenshots []string       `json:"screenshots"`
	Metadata    map[string]any `json:"metadata"`

	txt *string // sibling .txt content, applied in finalize
}

func newRecord() *Record {
	return &Record{
		Screenshots: []string{},
		Metadata:    map[string]any{"userSetData": map[string]any{}},
	}
}

// UserSetData returns the record's userSetData object, creating it if needed.
func (r *Record) UserSetData() map[string]any {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	u, ok := r.Metadata["userSetData"].(map[string]any)
	if !ok {
		u = map[string]any{}
		r.Metadata["userSetData"] = u
	}
	return u
}

// Description is userSetData.description when it is a string.
func (r *Record) Description() string {
	s, _ := r.UserSetData()["description"].(string)
	return s
}

type Builder struct {
	BaseURL string
	Skip    []string // file names ignored anywhere in the tree
	Log     *zap.Logger
}

func NewBuilder(baseURL string, log *zap.Logger) *Builder {
	if baseURL == "" {
		baseURL = manifest.DefaultIndexBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		BaseURL: baseURL,
		Skip:    []string{"README.md", manifest.DefaultIndexOutput},
		Log:     log,
	}
}

// Build walks root in lexical order and returns the merged index. Any read or
// parse failure aborts the build.
func (b *Builder) Build(root string) (Index, error) {
	idx := Index{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		if b.skipped(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		key, ext, ok := classify(name)
		if !ok {
			b.Log.Debug("pipelineindex: no extension, ignored", zap.String("path", path))
			return nil
		}
		rec := idx[key]
		if rec == nil {
			rec = newRecord()
			idx[key] = rec
		}
		switch ext {
		case "json":
			rec.JSON = b.url(path)
			return mergeDefinition(rec, path)
		case "txt":
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			s := string(raw)
			rec.txt = &s
		default:
			rec.Screenshots = append(rec.Screenshots, b.url(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pipelineindex: %w", err)
	}
	for _, rec := range idx {
		rec.finalize()
	}
	b.Log.Info("pipelineindex: built", zap.String("root", root), zap.Int("pipelines", len(idx)))
	return idx, nil
}

// Exclude adds file names to skip, typically a custom output file name.
func (b *Builder) Exclude(names ...string) {
	for _, n := range names {
		if n != "" && !b.skipped(n) {
			b.Skip = append(b.Skip, n)
		}
	}
}

func (b *Builder) skipped(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, s := range b.Skip {
		if name == s {
			return true
		}
	}
	return false
}

func (b *Builder) url(path string) string {
	return b.BaseURL + strings.TrimPrefix(filepath.ToSlash(path), "/")
}

// classify splits a file name into its pipeline key and final extension.
func classify(name string) (key, ext string, ok bool) {
	first := strings.IndexByte(name, '.')
	if first <= 0 {
		return "", "", false
	}
	last := strings.LastIndexByte(name, '.')
	ext = strings.ToLower(name[last+1:])
	if ext == "" {
		return "", "", false
	}
	key = strings.TrimSuffix(name[:first], highresSuffix)
	return key, ext, key != ""
}

// mergeDefinition replaces the accumulated metadata with the file's project
// object, carrying over userSetData when the project has none and a
// non-empty description when the project's is missing or empty.
func mergeDefinition(rec *Record, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc struct {
		Project map[string]any `json:"project"`
	}
	if err := codec.JSON.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if doc.Project == nil {
		return fmt.Errorf("%w: %s", ErrNotProject, path)
	}
	prev := rec.UserSetData()
	rec.Metadata = doc.Project
	next, ok := rec.Metadata["userSetData"].(map[string]any)
	if !ok {
		rec.Metadata["userSetData"] = prev
		return nil
	}
	// An earlier non-empty description survives a later empty one.
	if old, _ := prev["description"].(string); old != "" {
		if cur, _ := next["description"].(string); cur == "" {
			next["description"] = old
		}
	}
	return nil
}

// finalize resolves the description: a non-empty one from the definition
// wins, then the .txt sibling, then the project's instruction.
func (r *Record) finalize() {
	u := r.UserSetData()
	if s, ok := u["description"].(string); ok && s != "" {
		return
	}
	if r.txt != nil {
		u["description"] = *r.txt
		return
	}
	if instr, ok := r.Metadata["instruction"]; ok {
		u["description"] = instr
	}
}
