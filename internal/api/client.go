// Package api is the HTTP client for the remote script generator.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/scriptwiz/internal/logger"
)

// maxResponseBytes caps how much of a generation response is read.
const maxResponseBytes = 32 << 20

// IdempotencyHeader carries the per-submission key.
const IdempotencyHeader = "Idempotency-Key"

// Client talks to the generation and download endpoints.
type Client struct {
	base         *url.URL
	generatePath string
	downloadPath string
	http         *http.Client
	maxResponse  int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
// Timeouts belong on the request context, so the default client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithGeneratePath overrides the generation endpoint path.
func WithGeneratePath(p string) Option {
	return func(c *Client) { c.generatePath = p }
}

// WithDownloadPath overrides the download path template; {id} is replaced.
func WithDownloadPath(p string) Option {
	return func(c *Client) { c.downloadPath = p }
}

// New creates a client for the generator at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url must be absolute: %q", baseURL)
	}

	c := &Client{
		base:         u,
		generatePath: "/api/generate",
		downloadPath: "/api/download/{id}",
		http:         &http.Client{},
		maxResponse:  maxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewIdempotencyKey returns a fresh key for a new submission.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// resolve joins an already-escaped path onto the base URL.
func (c *Client) resolve(p string) string {
	ref, err := url.Parse(p)
	if err != nil {
		ref = &url.URL{Path: p}
	}
	return c.base.ResolveReference(ref).String()
}

// Generate issues exactly one POST to the generation endpoint.
// Failures come back as *NetworkError or *ServerError.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generation request: %w", err)
	}

	endpoint := c.resolve(c.generatePath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(IdempotencyHeader, req.IdempotencyKey)
	}

	logger.Debug("POST %s (category=%q complexity=%s locale=%s key=%s)",
		endpoint, req.Category, req.Complexity, req.Locale, req.IdempotencyKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, "generate", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, transportError(ctx, "generate", err)
	}
	if int64(len(data)) > c.maxResponse {
		logger.Warn("Generator response exceeded %d bytes", c.maxResponse)
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("generator response too large (over %d bytes)", c.maxResponse),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &env)
		logger.Warn("Generator returned %d: %s", resp.StatusCode, env.Error)
		return nil, newStatusError(resp.StatusCode, env.Error)
	}

	var result GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response from generator: %v", err),
		}
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = DefaultServerMessage
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}
	if result.ArtifactID == "" {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: "generator response is missing an artifact id"}
	}

	logger.Debug("Generated artifact %s with %d scripts", result.ArtifactID, len(result.Scripts))
	return &result, nil
}

// DownloadURL returns the download location for an artifact.
func (c *Client) DownloadURL(artifactID string) string {
	p := strings.ReplaceAll(c.downloadPath, "{id}", url.PathEscape(artifactID))
	return c.resolve(p)
}

// Fetch downloads rawURL into dir and returns the written file path.
// The file name comes from Content-Disposition, else the last URL segment.
// Existing files are never replaced; a taken name gets a numeric suffix.
func (c *Client) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", transportError(ctx, "download", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newStatusError(resp.StatusCode, "")
	}

	name := downloadName(resp.Header.Get("Content-Disposition"), rawURL)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	f, path, err := createUnique(dir, name)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", transportError(ctx, "download", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing download file: %w", err)
	}

	logger.Info("Downloaded %s to %s", rawURL, path)
	return path, nil
}

// downloadName picks a safe base file name for a download.
func downloadName(disposition, rawURL string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := safeBase(params["filename"]); name != "" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := safeBase(u.Path); name != "" {
			return name + ".zip"
		}
	}
	return "artifact.zip"
}

// safeBase strips directories and leading dots, so a download can neither
// escape its directory nor land as a hidden config file.
func safeBase(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return ""
	}
	return name
}

// maxNameAttempts bounds the suffixes tried by createUnique.
const maxNameAttempts = 1000

// createUnique creates name in dir without touching existing files,
// trying name-1.ext, name-2.ext and so on when it is taken.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

// transportError classifies a transport failure, flagging timeouts.
func transportError(ctx context.Context, op string, err error) error {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	return &NetworkError{Op: op, Err: err, Timeout: timeout}
}
