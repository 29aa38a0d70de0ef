package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/catalog"
	"github.com/dyluth/lore/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "basic/widget-sorting/lesson.yml",
		"slug: widget-sorting\ntitle: Widget sorting\ncategory: algorithms\ndifficulty: 2\ntags: [sorting]\n")
	writeFile(t, root, "basic/widget-sorting/problem.md",
		"# Widget sorting\n\nStart with [step one](step-01.md) or read the [background](https://example.com/sorting).\n")
	writeFile(t, root, "basic/widget-sorting/step-01.md",
		"# Step one\n\nFinish with the [solution](solution.md).\n")
	writeFile(t, root, "basic/widget-sorting/solution.md",
		"# Solution\n\nDone.\n")
	writeFile(t, root, "basic/widget-sorting/data.txt",
		"widget data\n")

	writeFile(t, root, "advanced/cache-stampede/lesson.yml",
		"slug: cache-stampede\ntitle: Cache stampede\ncategory: caching\ndifficulty: 4\n")
	writeFile(t, root, "advanced/cache-stampede/problem.md",
		"# Cache stampede\n\nNo steps yet.\n")
	writeFile(t, root, "advanced/cache-stampede/lab.yml",
		"version: \"1\"\ntitle: Cache lab\nservices:\n  redis:\n    image: redis:7-alpine\n")

	cfg := &config.Config{Version: "1", Root: root}
	require.NoError(t, cfg.Validate())

	s, err := New(cfg, Options{Debug: true})
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Index(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "2 lessons")
	assert.Contains(t, body, `href="/lessons/basic/widget-sorting"`)
	assert.Contains(t, body, "Widget sorting")
	assert.Contains(t, body, "Cache stampede")
	// Levels come out in canonical order
	assert.Less(t, strings.Index(body, "<h2>basic</h2>"), strings.Index(body, "<h2>advanced</h2>"))
}

func TestServer_LessonServesProblem(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/lessons/basic/widget-sorting")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "Widget sorting")
	// Relative links are rewritten to routes, external ones kept
	assert.Contains(t, body, `href="/lessons/basic/widget-sorting/step-01.md"`)
	assert.Contains(t, body, `href="https://example.com/sorting"`)
}

func TestServer_LessonFileNavigation(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/lessons/basic/widget-sorting/step-01.md")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/lessons/basic/widget-sorting/solution.md"`)
	// Sequence navigation: problem behind, solution ahead
	assert.Contains(t, body, "Problem")
	assert.Contains(t, body, "Solution")
}

func TestServer_StaticAsset(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/lessons/basic/widget-sorting/data.txt")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "widget data")
}

func TestServer_NotFound(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"unknown lesson", "/lessons/basic/no-such-lesson"},
		{"unknown level", "/lessons/expert/widget-sorting"},
		{"unknown file", "/lessons/basic/widget-sorting/step-09.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			require.Equal(t, http.StatusNotFound, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestServer_APILessons(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/lessons")

	require.Equal(t, http.StatusOK, rec.Code)
	var records []catalog.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "basic/widget-sorting", records[0].Ref)
	assert.Equal(t, "advanced/cache-stampede", records[1].Ref)
	assert.True(t, records[1].Lab)
	// List records omit the file sequence
	assert.Empty(t, records[0].Files)
}

func TestServer_APILessonsFiltered(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/lessons?level=advanced")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []catalog.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "cache-stampede", records[0].Slug)

	rec = get(t, s, "/api/lessons?level=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_APILessonDetail(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/lessons/basic/widget-sorting")

	require.Equal(t, http.StatusOK, rec.Code)
	var record catalog.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "Widget sorting", record.Title)
	assert.Equal(t, []string{"problem.md", "step-01.md", "solution.md"}, record.Files)
}

func TestServer_Healthz(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 2, resp.Lessons)
}

func TestServer_Healthz_RootGone(t *testing.T) {
	s := testServer(t)
	require.NoError(t, os.RemoveAll(s.cfg.Root))

	rec := get(t, s, "/healthz")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Error, "content root unavailable")
}

func TestServer_Metrics(t *testing.T) {
	s := testServer(t)

	// Generate at least one request before reading the counters
	get(t, s, "/healthz")
	rec := get(t, s, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lore_serve_http_requests_total")
}

func TestServer_RunShutsDownCleanly(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{Version: "1", Root: root}
	require.NoError(t, cfg.Validate())

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	s, err := New(cfg, Options{Addr: addr, Debug: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Wait for the listener to come up
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
