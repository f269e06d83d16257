// Package frame builds the editor URL and the iframe snippet used to embed
// the Visual Blocks UI in a notebook or another page.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"

	"github.com/joeydtaylor/vblocks/pkg/codec"
)

const DefaultHeight = 900

var ErrNotProject = errors.New("frame: not a saved project")

// AppURL points at the editor entry page. A non-empty projectJSON is carried
// in the fragment so the editor opens it.
func AppURL(base, projectJSON string) string {
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u := base + "index.html#/edit/_"
	if projectJSON != "" {
		u += "?project=" + quote(projectJSON)
	}
	return u
}

// quote escapes like a query value but keeps spaces as %20; the editor reads
// the fragment with decodeURIComponent, which does not map '+' to space.
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var iframeTmpl = template.Must(template.New("iframe").Parse(
	`<iframe src="{{.Src}}" width="100%" height="{{.Height}}" frameborder="0" ` +
		`style="border: 1px solid #ccc; box-sizing: border-box;" allow="camera;microphone"></iframe>`))

// IFrameHTML renders the embed snippet. Heights <= 0 use DefaultHeight.
func IFrameHTML(src string, height int) (string, error) {
	if height <= 0 {
		height = DefaultHeight
	}
	var buf bytes.Buffer
	err := iframeTmpl.Execute(&buf, struct {
		Src    string
		Height int
	}{src, height})
	if err != nil {
		return "", fmt.Errorf("frame: render iframe: %w", err)
	}
	return buf.String(), nil
}

// ReadProject loads a pipeline saved from the editor. The file must hold a
// JSON object with a "project" member; its compact form is returned.
func ReadProject(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var doc map[string]any
	if err := codec.JSON.Unmarshal(b, &doc); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotProject, path, err)
	}
	if _, ok := doc["project"]; !ok {
		return "", fmt.Errorf("%w: %s has no \"project\" member", ErrNotProject, path)
	}
	out, err := codec.JSON.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotProject, path, err)
	}
	return string(out), nil
}
