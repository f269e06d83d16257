package frame

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/index.html#/edit/_", AppURL("http://localhost:5000", ""))
	assert.Equal(t, "/index.html#/edit/_", AppURL("/", ""))

	project := `{"project":{"name":"a b&c=d+e"}}`
	got := AppURL("http://h/", project)
	prefix := "http://h/index.html#/edit/_?project="
	require.True(t, strings.HasPrefix(got, prefix), got)

	enc := strings.TrimPrefix(got, prefix)
	assert.NotContains(t, enc, "+")
	assert.NotContains(t, enc, "&")
	assert.NotContains(t, enc, " ")
	dec, err := url.PathUnescape(enc)
	require.NoError(t, err)
	assert.Equal(t, project, dec)
}

func TestIFrameHTML(t *testing.T) {
	html, err := IFrameHTML("http://h/index.html#/edit/_", 0)
	require.NoError(t, err)
	assert.Contains(t, html, `src="http://h/index.html#/edit/_"`)
	assert.Contains(t, html, `height="900"`)
	assert.Contains(t, html, `width="100%"`)
	assert.Contains(t, html, `allow="camera;microphone"`)

	html, err = IFrameHTML("http://h/", 480)
	require.NoError(t, err)
	assert.Contains(t, html, `height="480"`)
}

func TestIFrameHTMLEscapesAttributes(t *testing.T) {
	html, err := IFrameHTML(`http://h/"><script>alert(1)</script>`, 100)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestReadProject(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte("{\n  \"project\": {\"nodes\": []}\n}\n"), 0o644))
	got, err := ReadProject(good)
	require.NoError(t, err)
	assert.Equal(t, `{"project":{"nodes":[]}}`, got)

	html := filepath.Join(dir, "html.json")
	require.NoError(t, os.WriteFile(html, []byte(`{"project":{"name":"<a&b>"}}`), 0o644))
	got, err = ReadProject(html)
	require.NoError(t, err)
	assert.Equal(t, `{"project":{"name":"<a&b>"}}`, got)

	cases := map[string]string{
		"array.json":    `[1,2]`,
		"missing.json":  `{"pipeline":{}}`,
		"broken.json":   `{"project":`,
		"trailing.json": `{"project":{}} {}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			_, err := ReadProject(p)
			assert.ErrorIs(t, err, ErrNotProject)
		})
	}

	_, err = ReadProject(filepath.Join(dir, "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
