package recon

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// HeadProbe is the HTTP-probe tier for the headers route. Any response,
// whatever its status, is meaningful. Redirects are reported, not followed.
type HeadProbe struct {
	meta
	opts   Options
	scheme string
}

// NewHeadProbe returns the "<scheme>-head" adapter.
func NewHeadProbe(opts Options, scheme string, timeout time.Duration) *HeadProbe {
	base := opts.client()
	opts.Client = &http.Client{
		Transport: base.Transport,
		Jar:       base.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &HeadProbe{meta: meta{scheme + "-head", timeout}, opts: opts, scheme: scheme}
}

func (a *HeadProbe) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	u := a.scheme + "://" + q.Value
	resp, err := fetch(ctx, a.opts, request{
		source:    a.name,
		method:    http.MethodHead,
		url:       u,
		anyStatus: true,
		maxBody:   1,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"url":          u,
		"status_code":  resp.status,
		"headers":      flattenHeaders(resp.header),
		"technologies": Fingerprint(resp.header),
	}, nil
}

func (a *HeadProbe) Meaningful(p map[string]any) bool { return engine.Responded(p) }

// flattenHeaders joins repeated values with ", " under the canonical name.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, vals := range h {
		out[name] = strings.Join(vals, ", ")
	}
	return out
}
