package core

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/codec"
	"github.com/joeydtaylor/vblocks/pkg/dispatch"
	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"github.com/joeydtaylor/vblocks/pkg/middleware/logger"
	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/joeydtaylor/vblocks/pkg/tensor"
	"github.com/joeydtaylor/vblocks/pkg/transport/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, reg *registry.Registry, mutate func(*manifest.Config)) (*httptest.Server, string) {
	t.Helper()
	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<html>vb</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(site, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "static", "app.js"), []byte("app()"), 0o644))

	cfg := manifest.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	h := BuildRouter(cfg, BuildDeps{
		LogMW:      logger.New(zap.NewNop()),
		Router:     httpx.NewChi(),
		Dispatcher: dispatch.New(reg),
		SiteRoot:   site,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, site
}

func testRegistry() *registry.Registry {
	r := registry.New()
	r.MustRegisterGeneric("identity", func(_ context.Context, in []*tensor.Tensor) ([]*tensor.Tensor, error) {
		return in, nil
	})
	r.MustRegisterGeneric("bad_return", func(context.Context, []*tensor.Tensor) ([]*tensor.Tensor, error) {
		return []*tensor.Tensor{nil}, nil
	})
	r.MustRegisterGeneric("nothing", func(context.Context, []*tensor.Tensor) ([]*tensor.Tensor, error) {
		return nil, nil
	})
	r.MustRegisterTextToText("echo", func(_ context.Context, s string) (string, error) { return s, nil })
	r.MustRegisterTextToText("deadline", func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	return r
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func TestListInferenceFunctions(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), nil)
	code, body := do(t, http.MethodGet, srv.URL+PathList, "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"generic":["bad_return","identity","nothing"],"text_to_text":["deadline","echo"]}`, body)

	empty, _ := newTestServer(t, registry.New(), nil)
	_, body = do(t, http.MethodGet, empty.URL+PathList, "")
	assert.JSONEq(t, `{}`, body)
}

func TestGenericInference(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), nil)
	cases := []struct {
		name, body, want string
	}{
		{"identity", `{"function":"identity","tensors":[{"tensorValues":[1,2],"tensorShape":[2]}]}`,
			`{"tensors":[{"tensorValues":[1,2],"tensorShape":[2]}]}`},
		{"scalar", `{"function":"identity","tensors":[{"tensorValues":[7],"tensorShape":[]}]}`,
			`{"tensors":[{"tensorValues":[7],"tensorShape":[]}]}`},
		{"empty result", `{"function":"nothing","tensors":[]}`, `{"tensors":[]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, body := do(t, http.MethodPost, srv.URL+PathGeneric, c.body)
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, c.want, body)
		})
	}
}

func TestErrorsAreReportedInBody(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), nil)
	cases := []struct {
		name, path, body, contains string
	}{
		{"unknown generic", PathGeneric, `{"function":"nope","tensors":[]}`, `"nope"`},
		{"unknown text", PathTextToText, `{"function":"nope","text":"x"}`, "not found"},
		{"unknown tensors", PathTextToTensors, `{"function":"echo","text":"x"}`, "not found"},
		{"invalid return", PathGeneric, `{"function":"bad_return","tensors":[]}`, "is not a list of tensors"},
		{"shape mismatch", PathGeneric, `{"function":"identity","tensors":[{"tensorValues":[1],"tensorShape":[2]}]}`, "tensor 0"},
		{"missing function", PathTextToText, `{"text":"x"}`, `missing field "function"`},
		{"missing text", PathTextToText, `{"function":"echo"}`, `missing field "text"`},
		{"missing tensors", PathGeneric, `{"function":"identity"}`, `missing field "tensors"`},
		{"bad json", PathGeneric, `{"function":`, "bad request"},
		{"trailing json", PathTextToText, `{"function":"echo","text":"x"} {}`, "trailing"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, body := do(t, http.MethodPost, srv.URL+c.path, c.body)
			assert.Equal(t, http.StatusOK, code)
			var got map[string]string
			require.NoError(t, codec.JSON.Unmarshal([]byte(body), &got), body)
			assert.Contains(t, got["error"], c.contains)
		})
	}
}

func TestTextToTextAllowsEmptyText(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), nil)
	_, body := do(t, http.MethodPost, srv.URL+PathTextToText, `{"function":"echo","text":""}`)
	assert.JSONEq(t, `{"text":""}`, body)
}

func TestInferenceTimeout(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), func(c *manifest.Config) { c.Server.InferenceTimeoutMS = 20 })
	start := time.Now()
	_, body := do(t, http.MethodPost, srv.URL+PathTextToText, `{"function":"deadline","text":"x"}`)
	assert.Contains(t, body, context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBodyLimit(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), func(c *manifest.Config) { c.Server.MaxBodyBytes = 16 })
	_, body := do(t, http.MethodPost, srv.URL+PathTextToText, `{"function":"echo","text":"0123456789abcdef"}`)
	assert.Contains(t, body, "exceeds 16 bytes")
}

func TestStaticSiteAndHeartbeat(t *testing.T) {
	srv, _ := newTestServer(t, testRegistry(), nil)

	code, body := do(t, http.MethodGet, srv.URL+"/index.html", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<html>vb</html>", body)

	code, body = do(t, http.MethodGet, srv.URL+"/static/app.js", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "app()", body)

	code, _ = do(t, http.MethodGet, srv.URL+"/missing.js", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodGet, srv.URL+"/static", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodGet, srv.URL+"/../../etc/passwd", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, http.MethodGet, srv.URL+"/ping", "")
	assert.Equal(t, http.StatusOK, code)
}
