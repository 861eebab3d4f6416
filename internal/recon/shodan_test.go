package recon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
)

const sampleShodanHost = `{
  "ip_str": "8.8.8.8",
  "ports": [443, 53],
  "os": null,
  "org": "Google LLC",
  "hostnames": ["dns.google"],
  "vulns": ["CVE-2021-0001"],
  "data": [
    {"port": 53, "transport": "udp", "product": "Google DNS", "_shodan": {"module": "dns-udp"}},
    {"port": 443, "transport": "tcp", "product": "Google frontend", "version": "1.0",
     "vulns": {"CVE-2021-0001": {"cvss": 5.0}, "CVE-2020-9999": {"cvss": 7.5}},
     "_shodan": {"module": "https"}}
  ]
}`

func TestShodanNotConfigured(t *testing.T) {
	a := NewShodan(Options{}, "", time.Second)
	if _, err := a.Attempt(context.Background(), ipQuery); !errors.Is(err, engine.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestShodanHTTPIntegration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shodan/host/8.8.8.8" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		w.Write([]byte(sampleShodanHost))
	}))
	defer srv.Close()

	a := NewShodan(Options{}, "secret", 5*time.Second)
	a.baseURL = srv.URL + "/shodan/host/%s?key=%s"

	p, err := a.Attempt(context.Background(), ipQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Meaningful(p) {
		t.Fatal("payload should be meaningful")
	}

	portList := p["ports"].([]int)
	if len(portList) != 2 || portList[0] != 53 || portList[1] != 443 {
		t.Errorf("ports = %v, want [53 443]", portList)
	}
	services := p["services"].([]map[string]any)
	if services[0]["service"] != "dns-udp" || services[1]["version"] != "1.0" {
		t.Errorf("services = %v", services)
	}

	vulns := p["vulns"].([]map[string]any)
	if len(vulns) != 2 {
		t.Fatalf("vulns = %v, want 2 deduplicated entries", vulns)
	}
	if vulns[0]["id"] != "CVE-2020-9999" || vulns[0]["cvss"] != 7.5 || vulns[0]["port"] != 443 {
		t.Errorf("vulns[0] = %v", vulns[0])
	}
}

func TestShodanUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewShodan(Options{}, "bad", 5*time.Second)
	a.baseURL = srv.URL + "/%s?key=%s"
	if _, err := a.Attempt(context.Background(), ipQuery); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("err = %v, want 401 StatusError", err)
	}
}

func TestInternetDBHTTPIntegration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"8.8.8.8","ports":[443,22],"hostnames":["dns.google"],"cpes":[],"tags":[],"vulns":["CVE-2023-1234"]}`))
	}))
	defer srv.Close()

	a := NewInternetDB(Options{}, 5*time.Second)
	a.baseURL = srv.URL + "/%s"

	p, err := a.Attempt(context.Background(), ipQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	services := p["services"].([]map[string]any)
	if len(services) != 2 || services[0]["port"] != 22 || services[0]["service"] != "ssh" {
		t.Errorf("services = %v", services)
	}
	if services[1]["service"] != "https" {
		t.Errorf("services[1] = %v", services[1])
	}
	if v := p["vulns"].([]map[string]any); len(v) != 1 || v[0]["id"] != "CVE-2023-1234" {
		t.Errorf("vulns = %v", v)
	}
}

func TestInternetDBNoPortsNotMeaningful(t *testing.T) {
	p, err := parseInternetDB("10.0.0.1", []byte(`{"ip":"10.0.0.1","ports":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if NewInternetDB(Options{}, 0).Meaningful(p) {
		t.Errorf("empty port list should not be meaningful: %v", p)
	}
	if p["hostnames"] == nil {
		t.Error("hostnames should be an empty slice")
	}
}

func TestInternetDB404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"No information available"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewInternetDB(Options{}, 5*time.Second)
	a.baseURL = srv.URL + "/%s"
	if _, err := a.Attempt(context.Background(), ipQuery); !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("err = %v, want 404 StatusError", err)
	}
}
