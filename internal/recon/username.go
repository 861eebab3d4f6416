package recon

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/pkg/sites"
	"golang.org/x/time/rate"
)

const probeMaxBody = 1024 * 1024

// Prober checks catalog sites for a username one at a time. Requests are
// spaced by Interval; the pacing is per call, not shared across requests.
type Prober struct {
	Opts     Options
	Timeout  time.Duration
	Interval time.Duration
}

// Probe checks every site in catalog in order and returns one result per
// site. Per-site failures are recorded on the result, never returned.
func (p *Prober) Probe(ctx context.Context, username string, catalog []sites.Site) []sites.Result {
	limit := rate.Inf
	if p.Interval > 0 {
		limit = rate.Every(p.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	results := make([]sites.Result, 0, len(catalog))
	for _, site := range catalog {
		if err := limiter.Wait(ctx); err != nil {
			results = append(results, sites.Result{Site: site.Name, URL: site.ProfileURL(username), Error: err.Error()})
			continue
		}
		results = append(results, p.probeSite(ctx, site, username))
	}
	return results
}

func (p *Prober) probeSite(ctx context.Context, site sites.Site, username string) sites.Result {
	res := sites.Result{Site: site.Name, URL: site.ProfileURL(username)}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	resp, err := fetch(ctx, p.Opts, request{
		source:    site.Name,
		url:       res.URL,
		headers:   map[string]string{"Accept": "text/html,application/xhtml+xml"},
		maxBody:   probeMaxBody,
		anyStatus: true,
	})
	if err != nil {
		res.Error = probeError(err)
		return res
	}

	res.StatusCode = resp.status
	switch site.ErrorType {
	case sites.ErrorMessage:
		res.Exists = resp.status == http.StatusOK && !pageContains(resp.body, site.ErrorMsg)
	default:
		res.Exists = resp.status >= 200 && resp.status < 300
	}
	return res
}

// pageContains reports whether the page's title or text contains msg.
func pageContains(body []byte, msg string) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return bytes.Contains(body, []byte(msg))
	}
	if strings.Contains(doc.Find("title").Text(), msg) {
		return true
	}
	return strings.Contains(doc.Text(), msg)
}

func probeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

// usernamePayload shapes catalog results the way every username tier reports them.
func usernamePayload(results []sites.Result) map[string]any {
	sites.SortResults(results)
	return map[string]any{
		"found_on":    sites.CountFound(results),
		"total_sites": len(results),
		"results":     results,
	}
}

// answeredSites is the catalog-scan predicate: at least one site gave a
// definite answer.
func answeredSites(p map[string]any) bool {
	results, _ := p["results"].([]sites.Result)
	for _, r := range results {
		if r.Error == "" {
			return true
		}
	}
	return false
}

// LiveProbe is the opt-in catalog-scan tier that probes every site itself.
type LiveProbe struct {
	meta
	prober  *Prober
	catalog []sites.Site
	enabled bool
}

// NewLiveProbe returns the "live-probe" adapter. A disabled probe fails every
// attempt with engine.ErrNotConfigured.
func NewLiveProbe(prober *Prober, catalog []sites.Site, enabled bool, timeout time.Duration) *LiveProbe {
	return &LiveProbe{meta: meta{"live-probe", timeout}, prober: prober, catalog: catalog, enabled: enabled}
}

func (a *LiveProbe) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	if !a.enabled {
		return nil, engine.ErrNotConfigured
	}
	results := a.prober.Probe(ctx, q.Value, a.catalog)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return usernamePayload(results), nil
}

func (a *LiveProbe) Meaningful(p map[string]any) bool { return answeredSites(p) }
