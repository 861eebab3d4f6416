package recon

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/pkg/ports"
)

const (
	shodanBaseURL     = "https://api.shodan.io/shodan/host/%s?key=%s"
	internetDBBaseURL = "https://internetdb.shodan.io/%s"
	shodanMaxBody     = 4 * 1024 * 1024
)

type shodanHost struct {
	IPStr     string         `json:"ip_str"`
	Ports     []int          `json:"ports"`
	OS        string         `json:"os"`
	Org       string         `json:"org"`
	Hostnames []string       `json:"hostnames"`
	Vulns     []string       `json:"vulns"`
	Data      []shodanBanner `json:"data"`
}

type shodanBanner struct {
	Port      int                   `json:"port"`
	Transport string                `json:"transport"`
	Product   string                `json:"product"`
	Version   string                `json:"version"`
	Vulns     map[string]shodanVuln `json:"vulns"`
	Meta      struct {
		Module string `json:"module"`
	} `json:"_shodan"`
}

type shodanVuln struct {
	CVSS float64 `json:"cvss"`
}

// Shodan is the keyed service-scan tier (Shodan host API).
type Shodan struct {
	meta
	opts    Options
	apiKey  string
	baseURL string
}

// NewShodan returns the "shodan" adapter. Without a key every attempt fails
// with engine.ErrNotConfigured.
func NewShodan(opts Options, apiKey string, timeout time.Duration) *Shodan {
	return &Shodan{meta: meta{"shodan", timeout}, opts: opts, apiKey: apiKey, baseURL: shodanBaseURL}
}

func (a *Shodan) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	if a.apiKey == "" {
		return nil, engine.ErrNotConfigured
	}
	resp, err := fetch(ctx, a.opts, request{
		source:  a.name,
		url:     fmt.Sprintf(a.baseURL, q.Value, url.QueryEscape(a.apiKey)),
		maxBody: shodanMaxBody,
	})
	if err != nil {
		return nil, err
	}
	return parseShodanHost(q.Value, resp.body)
}

func (a *Shodan) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("ports")(p)
}

func parseShodanHost(ip string, body []byte) (map[string]any, error) {
	var h shodanHost
	if err := sonic.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("shodan JSON parse: %w", err)
	}

	services := make([]map[string]any, 0, len(h.Data))
	vulns := []map[string]any{}
	seenVuln := make(map[string]bool)
	for _, b := range h.Data {
		name := b.Meta.Module
		if name == "" {
			name = ports.Name(b.Port)
		}
		transport := b.Transport
		if transport == "" {
			transport = "tcp"
		}
		services = append(services, map[string]any{
			"port":      b.Port,
			"transport": transport,
			"service":   name,
			"product":   b.Product,
			"version":   b.Version,
		})

		ids := make([]string, 0, len(b.Vulns))
		for id := range b.Vulns {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if seenVuln[id] {
				continue
			}
			seenVuln[id] = true
			vulns = append(vulns, map[string]any{"id": id, "cvss": b.Vulns[id].CVSS, "port": b.Port})
		}
	}
	for _, id := range h.Vulns {
		if !seenVuln[id] {
			seenVuln[id] = true
			vulns = append(vulns, map[string]any{"id": id})
		}
	}

	portList := nonNilInts(h.Ports)
	sort.Ints(portList)

	return map[string]any{
		"ip":        ip,
		"ports":     portList,
		"services":  services,
		"os":        h.OS,
		"org":       h.Org,
		"hostnames": nonNil(h.Hostnames),
		"vulns":     vulns,
	}, nil
}

type internetDBHost struct {
	IP        string   `json:"ip"`
	Ports     []int    `json:"ports"`
	Hostnames []string `json:"hostnames"`
	CPEs      []string `json:"cpes"`
	Tags      []string `json:"tags"`
	Vulns     []string `json:"vulns"`
}

// InternetDB is the keyless service-scan tier. It knows open ports and CVE
// identifiers but not banners, so service names come from pkg/ports.
type InternetDB struct {
	meta
	opts    Options
	baseURL string
}

// NewInternetDB returns the "internetdb" adapter.
func NewInternetDB(opts Options, timeout time.Duration) *InternetDB {
	return &InternetDB{meta: meta{"internetdb", timeout}, opts: opts, baseURL: internetDBBaseURL}
}

func (a *InternetDB) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	resp, err := fetch(ctx, a.opts, request{source: a.name, url: fmt.Sprintf(a.baseURL, q.Value), maxBody: shodanMaxBody})
	if err != nil {
		return nil, err
	}
	return parseInternetDB(q.Value, resp.body)
}

func (a *InternetDB) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("ports")(p)
}

func parseInternetDB(ip string, body []byte) (map[string]any, error) {
	var h internetDBHost
	if err := sonic.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("internetdb JSON parse: %w", err)
	}

	portList := nonNilInts(h.Ports)
	sort.Ints(portList)

	services := make([]map[string]any, 0, len(portList))
	for _, p := range portList {
		transport := "tcp"
		if s, ok := ports.Lookup(p); ok {
			transport = s.Transport
		}
		services = append(services, map[string]any{
			"port":      p,
			"transport": transport,
			"service":   ports.Name(p),
			"product":   "",
			"version":   "",
		})
	}

	vulns := make([]map[string]any, 0, len(h.Vulns))
	for _, id := range h.Vulns {
		vulns = append(vulns, map[string]any{"id": id})
	}

	return map[string]any{
		"ip":        ip,
		"ports":     portList,
		"services":  services,
		"os":        "",
		"org":       "",
		"hostnames": nonNil(h.Hostnames),
		"cpes":      nonNil(h.CPEs),
		"tags":      nonNil(h.Tags),
		"vulns":     vulns,
	}, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func nonNilInts(ns []int) []int {
	if ns == nil {
		return []int{}
	}
	return ns
}
