package recon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const (
	hibpBaseURL            = "https://haveibeenpwned.com/api/v3/breachedaccount/%s?truncateResponse=false"
	breachDirectoryBaseURL = "https://breachdirectory.p.rapidapi.com/?func=auto&term=%s"
	breachDirectoryHost    = "breachdirectory.p.rapidapi.com"
	breachMaxBody          = 2 * 1024 * 1024
)

type hibpBreach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int64    `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
}

// checked reports whether a breach payload carries a definite answer.
// "Not breached" is as meaningful as a breach list.
func checked(p map[string]any) bool {
	_, ok := p["breached"].(bool)
	return ok
}

// HIBP is the primary breach-check tier (HaveIBeenPwned v3, keyed).
type HIBP struct {
	meta
	opts    Options
	apiKey  string
	baseURL string
}

// NewHIBP returns the "hibp" adapter.
func NewHIBP(opts Options, apiKey string, timeout time.Duration) *HIBP {
	return &HIBP{meta: meta{"hibp", timeout}, opts: opts, apiKey: apiKey, baseURL: hibpBaseURL}
}

func (a *HIBP) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	if a.apiKey == "" {
		return nil, engine.ErrNotConfigured
	}
	resp, err := fetch(ctx, a.opts, request{
		source: a.name,
		url:    fmt.Sprintf(a.baseURL, url.PathEscape(q.Value)),
		headers: map[string]string{
			"hibp-api-key": a.apiKey,
			"Accept":       "application/json",
		},
		maxBody: breachMaxBody,
		accept:  []int{http.StatusNotFound},
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("hibp: invalid API key")
		}
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return map[string]any{"breached": false, "breaches": []map[string]any{}}, nil
	}
	return parseHIBPResponse(resp.body)
}

func (a *HIBP) Meaningful(p map[string]any) bool { return checked(p) }

func parseHIBPResponse(body []byte) (map[string]any, error) {
	var breaches []hibpBreach
	if err := sonic.Unmarshal(body, &breaches); err != nil {
		return nil, fmt.Errorf("hibp JSON parse: %w", err)
	}

	entries := make([]map[string]any, 0, len(breaches))
	for _, b := range breaches {
		entries = append(entries, map[string]any{
			"name":         b.Name,
			"title":        b.Title,
			"domain":       b.Domain,
			"breach_date":  b.BreachDate,
			"pwn_count":    b.PwnCount,
			"data_classes": nonNil(b.DataClasses),
		})
	}
	return map[string]any{"breached": len(entries) > 0, "breaches": entries}, nil
}

type breachDirectoryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Found   int    `json:"found"`
	Result  []struct {
		HasPassword bool     `json:"has_password"`
		Sources     []string `json:"sources"`
	} `json:"result"`
}

// BreachDirectory is the fallback breach-check tier (BreachDirectory on RapidAPI).
type BreachDirectory struct {
	meta
	opts    Options
	apiKey  string
	baseURL string
}

// NewBreachDirectory returns the "breachdirectory" adapter.
func NewBreachDirectory(opts Options, apiKey string, timeout time.Duration) *BreachDirectory {
	return &BreachDirectory{meta: meta{"breachdirectory", timeout}, opts: opts, apiKey: apiKey, baseURL: breachDirectoryBaseURL}
}

func (a *BreachDirectory) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	if a.apiKey == "" {
		return nil, engine.ErrNotConfigured
	}
	resp, err := fetch(ctx, a.opts, request{
		source: a.name,
		url:    fmt.Sprintf(a.baseURL, url.QueryEscape(q.Value)),
		headers: map[string]string{
			"X-RapidAPI-Key":  a.apiKey,
			"X-RapidAPI-Host": breachDirectoryHost,
		},
		maxBody: breachMaxBody,
	})
	if err != nil {
		return nil, err
	}
	return parseBreachDirectoryResponse(resp.body)
}

func (a *BreachDirectory) Meaningful(p map[string]any) bool { return checked(p) }

// parseBreachDirectoryResponse groups results by source. The API reports
// leaked credentials, so an entry only names the source and what leaked.
func parseBreachDirectoryResponse(body []byte) (map[string]any, error) {
	var r breachDirectoryResponse
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("breachdirectory JSON parse: %w", err)
	}
	if !r.Success {
		if r.Message == "" {
			r.Message = "request failed"
		}
		return nil, fmt.Errorf("breachdirectory: %s", r.Message)
	}

	withPassword := make(map[string]bool)
	for _, res := range r.Result {
		for _, src := range res.Sources {
			withPassword[src] = withPassword[src] || res.HasPassword
		}
	}
	names := make([]string, 0, len(withPassword))
	for name := range withPassword {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]map[string]any, 0, len(names))
	for _, name := range names {
		classes := []string{"Email addresses"}
		if withPassword[name] {
			classes = append(classes, "Passwords")
		}
		entries = append(entries, map[string]any{
			"name":         name,
			"title":        name,
			"data_classes": classes,
		})
	}
	return map[string]any{"breached": r.Found > 0 || len(entries) > 0, "breaches": entries}, nil
}
