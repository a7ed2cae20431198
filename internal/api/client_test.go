package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, srv
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	require.Error(t, err)
}

func TestGenerate_SendsRequestAndDecodesResult(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "make a report", body["prompt"])
		assert.Equal(t, "report", body["procedure_type"])
		assert.Equal(t, "advanced", body["complexity"])
		assert.Equal(t, "sv", body["language"])
		assert.NotContains(t, body, "IdempotencyKey")

		_, _ = io.WriteString(w, `{"success":true,"project_id":"p1","scripts":[{"filename":"A.cs","content":"class A {}"}],"setup_instructions":"# Setup","dependencies":["dotnet"]}`)
	})

	res, err := c.Generate(context.Background(), GenerationRequest{
		Prompt:         "make a report",
		Category:       "report",
		Complexity:     ComplexityAdvanced,
		Locale:         "sv",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, "p1", res.ArtifactID)
	require.Equal(t, []Script{{Filename: "A.cs", Content: "class A {}"}}, res.Scripts)
	require.Equal(t, "# Setup", res.SetupInstructions)
	require.Equal(t, []string{"dotnet"}, res.Dependencies)
}

func TestGenerate_AcceptsArtifactIDAndNumericProjectID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"artifactId key", `{"success":true,"artifactId":"a-9","scripts":[]}`, "a-9"},
		{"numeric project_id", `{"success":true,"project_id":42,"scripts":[]}`, "42"},
		{"artifactId wins", `{"success":true,"artifactId":"a","project_id":"b","scripts":[]}`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			res, err := c.Generate(context.Background(), GenerationRequest{Prompt: "x"})
			require.NoError(t, err)
			require.Equal(t, tt.want, res.ArtifactID)
		})
	}
}

func TestGenerate_ServerFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"success false with message", 200, `{"success":false,"error":"boom"}`, "boom"},
		{"success false without message", 200, `{"success":false}`, DefaultServerMessage},
		{"500 with envelope", 500, `{"success":false,"error":"generator crashed"}`, "generator crashed"},
		{"502 without body", 502, ``, "server returned 502 Bad Gateway"},
		{"400 no data", 400, `{"success":false,"error":"No data"}`, "No data"},
		{"success without artifact", 200, `{"success":true,"scripts":[]}`, "generator response is missing an artifact id"},
		{"not json", 200, `<html>`, "invalid response from generator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			res, err := c.Generate(context.Background(), GenerationRequest{Prompt: "x"})
			require.Nil(t, res)

			var serr *ServerError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tt.status, serr.StatusCode)
			require.Contains(t, serr.Message, tt.wantMsg)
		})
	}
}

func TestGenerate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), GenerationRequest{Prompt: "x"})
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	require.False(t, nerr.Timeout)
	require.Equal(t, "generate", nerr.Op)
}

func TestGenerate_TimeoutIsFlagged(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, GenerationRequest{Prompt: "x"})
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	require.True(t, nerr.Timeout)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Contains(t, nerr.Error(), "timed out")
}

func TestDownloadURL(t *testing.T) {
	c, err := New("http://gen.local:5000/base/", WithDownloadPath("/files/{id}/archive"))
	require.NoError(t, err)
	require.Equal(t, "http://gen.local:5000/files/p%201/archive", c.DownloadURL("p 1"))

	c, err = New("http://gen.local:5000")
	require.NoError(t, err)
	require.Equal(t, "http://gen.local:5000/api/download/p1", c.DownloadURL("p1"))
}

func TestFetch_WritesFileNamedByDisposition(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="../../escape.zip"`)
		_, _ = io.WriteString(w, "PK-bytes")
	})

	dir := t.TempDir()
	path, err := c.Fetch(context.Background(), c.DownloadURL("p1"), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "escape.zip"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "PK-bytes", string(data))
}

func TestFetch_FallsBackToURLName(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "zip")
	})

	path, err := c.Fetch(context.Background(), c.DownloadURL("p7"), t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "p7.zip", filepath.Base(path))
}

func TestFetch_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.Fetch(context.Background(), c.DownloadURL("missing"), t.TempDir())
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestParseComplexity(t *testing.T) {
	for _, in := range []string{"", "standard", " Standard "} {
		got, err := ParseComplexity(in)
		require.NoError(t, err)
		require.Equal(t, ComplexityStandard, got)
	}
	got, err := ParseComplexity("ADVANCED")
	require.NoError(t, err)
	require.Equal(t, ComplexityAdvanced, got)

	_, err = ParseComplexity("extreme")
	require.Error(t, err)
}

func TestComplexityNext(t *testing.T) {
	require.Equal(t, ComplexityStandard, ComplexityBasic.Next())
	require.Equal(t, ComplexityAdvanced, ComplexityStandard.Next())
	require.Equal(t, ComplexityBasic, ComplexityAdvanced.Next())
	require.Equal(t, ComplexityStandard, Complexity("odd").Next())
}

func TestGenerationRequestEqual(t *testing.T) {
	a := GenerationRequest{Prompt: "p", Category: "c", Complexity: ComplexityBasic, Locale: "en", IdempotencyKey: "k1"}
	b := a
	b.IdempotencyKey = "k2"
	require.True(t, a.Equal(b), "keys must not affect equality")

	b.Prompt = "other"
	require.False(t, a.Equal(b))
}

func TestFetch_NeverReplacesExistingFiles(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="p1.zip"`)
		_, _ = io.WriteString(w, "new")
	})

	dir := t.TempDir()
	existing := filepath.Join(dir, "p1.zip")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	path, err := c.Fetch(context.Background(), c.DownloadURL("p1"), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "p1-1.zip"), path)

	path, err = c.Fetch(context.Background(), c.DownloadURL("p1"), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "p1-2.zip"), path)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
}

func TestFetch_HiddenNameCannotReplaceConfig(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename=".scriptwiz.hooks.yml"`)
		_, _ = io.WriteString(w, "hooks:\n  post_generate:\n    - command: evil\n")
	})

	dir := t.TempDir()
	hooksFile := filepath.Join(dir, ".scriptwiz.hooks.yml")
	require.NoError(t, os.WriteFile(hooksFile, []byte("version: 1\n"), 0644))

	path, err := c.Fetch(context.Background(), c.DownloadURL("p1"), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "scriptwiz.hooks.yml"), path)

	data, err := os.ReadFile(hooksFile)
	require.NoError(t, err)
	require.Equal(t, "version: 1\n", string(data))
}

func TestSafeBase(t *testing.T) {
	require.Equal(t, "a.zip", safeBase("../../a.zip"))
	require.Equal(t, "a.zip", safeBase(`..\..\a.zip`))
	require.Equal(t, "env", safeBase(".env"))
	require.Equal(t, "", safeBase(".."))
	require.Equal(t, "", safeBase("..."))
	require.Equal(t, "", safeBase(""))
}

func TestGenerate_ResponseTooLarge(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"artifactId":"p1","scripts":[]}`)
	})
	c.maxResponse = 16

	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "x"})
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	require.Contains(t, serr.Message, "too large")
}
