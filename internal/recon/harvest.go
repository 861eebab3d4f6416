package recon

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const harvestMaxBody = 2 * 1024 * 1024

// harvestPaths are fetched in order relative to the site root.
var harvestPaths = []string{"/", "/contact", "/about"}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Harvest scrapes a domain's web pages for email addresses.
type Harvest struct {
	meta
	opts   Options
	scheme string
}

// NewHarvest returns the "harvest" adapter.
func NewHarvest(opts Options, timeout time.Duration) *Harvest {
	return &Harvest{meta: meta{"harvest", timeout}, opts: opts, scheme: "https"}
}

func (a *Harvest) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	found := make(map[string]bool)
	var lastErr error
	fetched := 0

	for _, path := range harvestPaths {
		resp, err := fetch(ctx, a.opts, request{
			source:  a.name,
			url:     a.scheme + "://" + q.Value + path,
			headers: map[string]string{"Accept": "text/html,application/xhtml+xml"},
			maxBody: harvestMaxBody,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			lastErr = err
			continue
		}
		fetched++
		for _, e := range extractEmails(resp.body) {
			found[e] = true
		}
	}

	if fetched == 0 {
		if lastErr == nil {
			lastErr = ctx.Err()
		}
		return nil, fmt.Errorf("no page fetched: %w", lastErr)
	}

	emails := make([]string, 0, len(found))
	for e := range found {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return map[string]any{"emails": emails}, nil
}

func (a *Harvest) Meaningful(p map[string]any) bool {
	return engine.Extracted("emails")(p)
}

// extractEmails collects mailto: targets and addresses in the visible text.
func extractEmails(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
			return
		}
		target, _, _ := strings.Cut(href[len("mailto:"):], "?")
		for _, addr := range strings.Split(target, ",") {
			if e, ok := normalizeEmail(addr); ok {
				out = append(out, e)
			}
		}
	})

	doc.Find("script, style").Remove()
	for _, m := range emailPattern.FindAllString(doc.Text(), -1) {
		if e, ok := normalizeEmail(m); ok {
			out = append(out, e)
		}
	}
	return out
}

func normalizeEmail(s string) (string, bool) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	e := strings.ToLower(addr.Address)
	// Skip image names like logo@2x.png picked up from text.
	if strings.HasSuffix(e, ".png") || strings.HasSuffix(e, ".jpg") || strings.HasSuffix(e, ".svg") {
		return "", false
	}
	return e, true
}
