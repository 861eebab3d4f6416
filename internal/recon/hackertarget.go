package recon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
)

const (
	hackertargetBaseURL = "https://api.hackertarget.com/whois/?q=%s"
	hackertargetMaxBody = 1024 * 1024
	hackertargetRateMsg = "API count exceeded"
)

// Hackertarget is the public demo-API tier for domain WHOIS.
type Hackertarget struct {
	meta
	opts    Options
	baseURL string
}

// NewHackertarget returns the "hackertarget" adapter.
func NewHackertarget(opts Options, timeout time.Duration) *Hackertarget {
	return &Hackertarget{meta: meta{"hackertarget", timeout}, opts: opts, baseURL: hackertargetBaseURL}
}

func (a *Hackertarget) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	body, err := hackertargetDoRequest(ctx, a.opts, fmt.Sprintf(a.baseURL, url.QueryEscape(q.Value)))
	if err != nil {
		return nil, err
	}
	return scrapeWHOIS(body, domainSchema), nil
}

func (a *Hackertarget) Meaningful(p map[string]any) bool {
	return engine.Extracted("registrar", "creation_date", "expiration_date", "name_servers")(p)
}

func hackertargetDoRequest(ctx context.Context, opts Options, u string) (string, error) {
	resp, err := fetch(ctx, opts, request{source: "hackertarget", url: u, maxBody: hackertargetMaxBody})
	if err != nil {
		return "", err
	}

	body := string(resp.body)

	// HackerTarget answers 200 with a plain text error when rate limited.
	if strings.Contains(body, hackertargetRateMsg) {
		return "", fmt.Errorf("hackertarget: %s", hackertargetRateMsg)
	}
	if strings.HasPrefix(strings.TrimSpace(body), "error") {
		return "", fmt.Errorf("hackertarget: %s", strings.TrimSpace(body))
	}

	return body, nil
}
