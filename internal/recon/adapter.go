// Package recon implements the data-source adapters that fallback chains try
// in order. Every adapter satisfies engine.Adapter.
package recon

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Options carries what HTTP adapters share.
type Options struct {
	Client    *http.Client
	UserAgent string
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return DefaultUserAgent
}

// meta provides Name and Timeout for embedding adapters.
type meta struct {
	name    string
	timeout time.Duration
}

func (m meta) Name() string           { return m.name }
func (m meta) Timeout() time.Duration { return m.timeout }

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	if e.Code == http.StatusTooManyRequests {
		return fmt.Sprintf("%s rate limited (429)", e.Source)
	}
	return fmt.Sprintf("%s returned status %d", e.Source, e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// request describes one HTTP fetch.
type request struct {
	source  string
	method  string
	url     string
	headers map[string]string
	maxBody int64
	// accept lists status codes besides 200 that are returned instead of
	// turned into a StatusError.
	accept    []int
	anyStatus bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// fetch performs req and returns the decoded body. Brotli, gzip and deflate
// encodings are decoded.
func fetch(ctx context.Context, opts Options, req request) (*response, error) {
	method := req.method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", opts.userAgent())
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := opts.client().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !req.anyStatus && resp.StatusCode != http.StatusOK && !contains(req.accept, resp.StatusCode) {
		return nil, &StatusError{Source: req.source, Code: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%s decode body: %w", req.source, err)
	}

	maxBody := req.maxBody
	if maxBody <= 0 {
		maxBody = 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(reader, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", req.source, err)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return flate.NewReader(resp.Body), nil
	}
	return resp.Body, nil
}

func contains(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// CommandRunner runs an external program and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. The process is killed when ctx ends.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(out) > 0 {
			// Some tools exit non-zero while still printing usable output.
			return out, nil
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func runner(r CommandRunner) CommandRunner {
	if r != nil {
		return r
	}
	return ExecRunner
}
