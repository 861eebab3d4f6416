package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vulnverified/iseeyou/internal/config"
	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/internal/recon"
	"github.com/vulnverified/iseeyou/internal/synth"
	"github.com/vulnverified/iseeyou/pkg/sites"
)

func fixed(name string, payload map[string]any, pred func(map[string]any) bool) *engine.Func {
	return &engine.Func{
		Label:   name,
		Budget:  time.Second,
		Fn:      func(ctx context.Context, q engine.Query) (map[string]any, error) { return payload, nil },
		Predict: pred,
	}
}

func failing(name string, err error) *engine.Func {
	return &engine.Func{
		Label:  name,
		Budget: time.Second,
		Fn:     func(ctx context.Context, q engine.Query) (map[string]any, error) { return nil, err },
	}
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testService() *Service {
	g := synth.New(synth.DefaultParams())
	g.Now = func() time.Time { return fixedNow }
	return &Service{
		Generator: g,
		Catalog:   sites.All(),
		Prober:    &recon.Prober{Timeout: time.Second},
		DNSSources: func(recordType string) ([]engine.Adapter, error) {
			return []engine.Adapter{failing("dns", errors.New("timeout"))}, nil
		},
	}
}

func TestDomainWhois_FirstTier(t *testing.T) {
	s := testService()
	s.WhoisSources = []engine.Adapter{
		fixed("whois", map[string]any{"registrar": "Example Registrar"}, nil),
		failing("whois-cli", errors.New("should not run")),
	}

	env, err := s.DomainWhois(context.Background(), "Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["domain"] != "example.com" || env["source"] != "whois" {
		t.Errorf("envelope = %v", env)
	}
	if _, ok := env["note"]; ok {
		t.Error("authoritative data must not carry a note")
	}
}

func TestDomainWhois_Synthetic(t *testing.T) {
	s := testService()
	s.WhoisSources = []engine.Adapter{
		failing("whois", errors.New("connection refused")),
		failing("hackertarget", errors.New("API count exceeded")),
	}

	env, err := s.DomainWhois(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["source"] != engine.SourceSynthetic || env["note"] == nil {
		t.Errorf("envelope = %v, want synthetic with note", env)
	}
	data := env["whois_data"].(map[string]any)
	if data["domain_name"] != "example.com" {
		t.Errorf("whois_data = %v", data)
	}
	if w := env["warnings"].([]string); len(w) != 2 {
		t.Errorf("warnings = %v", w)
	}
}

func TestDomainWhois_Validation(t *testing.T) {
	s := testService()
	_, err := s.DomainWhois(context.Background(), "")
	if !errors.Is(err, engine.ErrMissingValue) {
		t.Fatalf("err = %v, want ErrMissingValue", err)
	}
	_, err = s.DomainWhois(context.Background(), "not a domain")
	if !engine.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDomainDNS_Clean(t *testing.T) {
	s := testService()
	s.DNSSources = func(recordType string) ([]engine.Adapter, error) {
		return []engine.Adapter{
			fixed("dns", map[string]any{"records": []string{"93.184.216.34"}, "rcode": "NOERROR"}, engine.Answered),
		}, nil
	}

	env, err := s.DomainDNS(context.Background(), "example.com", []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records := env["dns_records"].(map[string][]string)
	if len(records) != 1 || records["A"][0] != "93.184.216.34" {
		t.Errorf("dns_records = %v", records)
	}
	if _, ok := env["sources"]; ok {
		t.Error("sources should be absent when nothing degraded")
	}
}

func TestDomainDNS_DefaultTypesSynthesized(t *testing.T) {
	s := testService()
	var asked []string
	s.DNSSources = func(recordType string) ([]engine.Adapter, error) {
		asked = append(asked, recordType)
		return []engine.Adapter{failing("dns", errors.New("i/o timeout"))}, nil
	}

	env, err := s.DomainDNS(context.Background(), "example.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asked) != len(DefaultRecordTypes) {
		t.Errorf("chains = %v, want one per default type", asked)
	}
	records := env["dns_records"].(map[string][]string)
	if len(records["A"]) == 0 {
		t.Error("synthetic A records expected")
	}
	if cname := records["CNAME"]; cname == nil || len(cname) != 0 {
		t.Errorf("CNAME = %#v, want empty non-nil", cname)
	}
	if env["note"] == nil {
		t.Error("note expected when record types were synthesized")
	}
}

func TestDomainDNS_NXDOMAINIsEmptyNotSynthetic(t *testing.T) {
	s := testService()
	s.DNSSources = func(recordType string) ([]engine.Adapter, error) {
		return []engine.Adapter{
			fixed("dns", map[string]any{"records": []string{}, "rcode": "NXDOMAIN"}, engine.Answered),
		}, nil
	}

	env, err := s.DomainDNS(context.Background(), "nope.example", []string{"A", "MX"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env["note"]; ok {
		t.Error("NXDOMAIN must not trigger synthesis")
	}
	if len(env["dns_records"].(map[string][]string)["MX"]) != 0 {
		t.Errorf("dns_records = %v", env["dns_records"])
	}
}

func TestParseRecordTypes(t *testing.T) {
	got, err := ParseRecordTypes([]string{"mx", " a ", "MX", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "MX" || got[1] != "A" {
		t.Errorf("types = %v, want [MX A]", got)
	}

	_, err = ParseRecordTypes([]string{"A", "AXFR"})
	if !errors.Is(err, engine.ErrUnsupportedRecordType) || !engine.IsValidation(err) {
		t.Errorf("err = %v, want unsupported record type", err)
	}

	if got, _ := ParseRecordTypes(nil); len(got) != len(DefaultRecordTypes) {
		t.Errorf("default types = %v", got)
	}
}

func TestDomainHeaders(t *testing.T) {
	s := testService()
	httpsCalls := 0
	s.HeaderSources = []engine.Adapter{
		&engine.Func{Label: "https-head", Budget: time.Second, Predict: engine.Responded,
			Fn: func(ctx context.Context, q engine.Query) (map[string]any, error) {
				httpsCalls++
				return nil, errors.New("tls: handshake failure")
			}},
		fixed("http-head", map[string]any{"url": "http://example.com", "status_code": 200}, engine.Responded),
	}

	env, err := s.DomainHeaders(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["source"] != "http-head" || env["status_code"] != 200 {
		t.Errorf("envelope = %v", env)
	}

	httpsCalls = 0
	env, err = s.DomainHeaders(context.Background(), "http://example.com/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if httpsCalls != 0 {
		t.Error("an explicit http:// scheme must skip the https tier")
	}
	if env["domain"] != "example.com" {
		t.Errorf("domain = %v", env["domain"])
	}

	env, err = s.DomainHeaders(context.Background(), "https://example.com:8443/x")
	if err != nil {
		t.Fatalf("port in URL: unexpected error: %v", err)
	}
	if env["domain"] != "example.com" {
		t.Errorf("domain = %v, want the port dropped", env["domain"])
	}
}

func TestDomainHeaders_Exhausted(t *testing.T) {
	s := testService()
	s.HeaderSources = []engine.Adapter{
		failing("https-head", errors.New("connection refused")),
		failing("http-head", errors.New("connection refused")),
	}

	env, err := s.DomainHeaders(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["error"] != "all sources failed" {
		t.Errorf("error = %v", env["error"])
	}
	if env["message"] != "https-head: connection refused; http-head: connection refused" {
		t.Errorf("message = %v", env["message"])
	}
}

func TestSplitScheme(t *testing.T) {
	tests := []struct{ in, host, scheme string }{
		{"example.com", "example.com", ""},
		{"HTTPS://Example.com/", "Example.com", "https"},
		{"http://example.com?x=1", "example.com", "http"},
		{"https://example.com:8443/x", "example.com", "https"},
		{"example.com:8080", "example.com", ""},
		{"http://user:pw@example.com:81", "example.com", "http"},
	}
	for _, tt := range tests {
		host, scheme := splitScheme(tt.in)
		if host != tt.host || scheme != tt.scheme {
			t.Errorf("splitScheme(%q) = %q, %q", tt.in, host, scheme)
		}
	}
}

func TestEmailValidate(t *testing.T) {
	s := testService()
	s.MXSources = []engine.Adapter{
		fixed("dns", map[string]any{"records": []string{"10 mx1.example.com.", "20 mx2.example.com."}, "rcode": "NOERROR"}, engine.Answered),
	}

	env, err := s.EmailValidate(context.Background(), "alice@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["format_valid"] != true || env["domain"] != "example.com" || env["has_mx_records"] != true {
		t.Errorf("envelope = %v", env)
	}
	mx := env["mx_records"].([]string)
	if len(mx) != 2 || mx[0] != "mx1.example.com." {
		t.Errorf("mx_records = %v", mx)
	}
}

func TestEmailValidate_BadFormat(t *testing.T) {
	s := testService()
	s.MXSources = []engine.Adapter{failing("dns", errors.New("must not run"))}

	env, err := s.EmailValidate(context.Background(), "not-an-email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["format_valid"] != false || env["domain"] != nil || env["has_mx_records"] != false {
		t.Errorf("envelope = %v", env)
	}
	if _, ok := env["source"]; ok {
		t.Error("no chain should run for a malformed address")
	}

	if _, err := s.EmailValidate(context.Background(), " "); !errors.Is(err, engine.ErrMissingValue) {
		t.Errorf("err = %v, want ErrMissingValue", err)
	}
}

func TestEmailValidate_NoMXNotSynthesized(t *testing.T) {
	s := testService()
	s.MXSources = []engine.Adapter{failing("dns", errors.New("timeout")), failing("system-mx", errors.New("timeout"))}

	env, err := s.EmailValidate(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["has_mx_records"] != false || env["source"] != engine.SourceNone {
		t.Errorf("envelope = %v", env)
	}
}

func TestEmailBreaches_Synthetic(t *testing.T) {
	s := testService()
	s.BreachSources = []engine.Adapter{failing("hibp", engine.ErrNotConfigured)}

	env, err := s.EmailBreaches(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := synth.Seed("alice@example.com")%3 != 0
	if env["breached"] != want {
		t.Errorf("breached = %v, want %v", env["breached"], want)
	}
	if env["email"] != "alice@example.com" || env["source"] != engine.SourceSynthetic {
		t.Errorf("envelope = %v", env)
	}
	if w := env["warnings"].([]string); w[0] != "hibp: source not configured" {
		t.Errorf("warnings = %v", w)
	}
}

func TestIPReverseDNS(t *testing.T) {
	s := testService()
	s.ReverseDNSSources = []engine.Adapter{
		fixed("system-ptr", map[string]any{"hostnames": []string{"dns.google"}, "rcode": "NOERROR"}, engine.Answered),
	}
	env, err := s.IPReverseDNS(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["hostname"] != "dns.google" {
		t.Errorf("hostname = %v", env["hostname"])
	}

	s.ReverseDNSSources = []engine.Adapter{
		fixed("system-ptr", map[string]any{"hostnames": []string{}, "rcode": "NXDOMAIN"}, engine.Answered),
	}
	env, err = s.IPReverseDNS(context.Background(), "192.0.2.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["hostname"] != nil || env["message"] != NoHostnameMessage {
		t.Errorf("envelope = %v", env)
	}

	if _, err := s.IPReverseDNS(context.Background(), "999.1.1.1"); !engine.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestIPGeolocation_Exhausted(t *testing.T) {
	s := testService()
	s.GeoSources = []engine.Adapter{failing("ip-api", errors.New("timeout")), failing("otx", errors.New("500"))}

	env, err := s.IPGeolocation(context.Background(), "1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["error"] != "all sources failed" {
		t.Errorf("envelope = %v", env)
	}
	if _, ok := env["geolocation"]; ok {
		t.Error("geolocation must not be synthesized")
	}
}

func TestIPServices_Synthetic(t *testing.T) {
	s := testService()
	s.ServiceSources = []engine.Adapter{failing("shodan", engine.ErrNotConfigured)}

	env, err := s.IPServices(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := env["shodan_data"].(map[string]any)
	if len(data["ports"].([]int)) < 2 {
		t.Errorf("shodan_data = %v", data)
	}
	if env["note"] == nil {
		t.Error("note expected")
	}
}

func TestUsernameSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a/alice" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := testService()
	s.Catalog = []sites.Site{
		{Name: "A", URL: srv.URL + "/a/{username}", ErrorType: sites.ErrorStatusCode},
		{Name: "B", URL: srv.URL + "/b/{username}", ErrorType: sites.ErrorStatusCode},
		{Name: "C", URL: srv.URL + "/c/{username}", ErrorType: sites.ErrorStatusCode},
	}

	env, err := s.UsernameSearch(context.Background(), "alice", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results := env["results"].([]sites.Result)
	if len(results) != 2 {
		t.Fatalf("results = %d, want limit 2", len(results))
	}
	if !results[0].Exists || results[1].Exists {
		t.Errorf("results = %+v", results)
	}
}

func TestUsernameCatalog_Synthetic(t *testing.T) {
	s := testService()
	s.CatalogSources = []engine.Adapter{failing("sherlock", errors.New("executable file not found"))}

	env, err := s.UsernameCatalog(context.Background(), "johndoe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["total_sites"] != len(sites.All()) || env["source"] != engine.SourceSynthetic {
		t.Errorf("envelope = %v", env)
	}
}

type countingReporter struct{ attempts, warnings int }

func (r *countingReporter) Attempt(chain string, tier int, source string) { r.attempts++ }
func (r *countingReporter) Warn(msg string)                              { r.warnings++ }

func TestWithReporter(t *testing.T) {
	s := testService()
	s.DomainEmailSources = []engine.Adapter{
		failing("harvest", errors.New("no page fetched")),
		fixed("whois-contacts", map[string]any{"emails": []string{"hostmaster@example.com"}}, engine.Extracted("emails")),
	}
	rep := &countingReporter{}

	env, err := s.DomainEmails(WithReporter(context.Background(), rep), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["source"] != "whois-contacts" {
		t.Errorf("source = %v", env["source"])
	}
	if rep.attempts != 2 || rep.warnings != 1 {
		t.Errorf("reporter = %+v", rep)
	}
}

func TestNew(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	names := func(as []engine.Adapter) []string {
		out := make([]string, 0, len(as))
		for _, a := range as {
			out = append(out, a.Name())
		}
		return out
	}
	checks := map[string][]string{
		"whois":    {"whois", "whois-cli", "hackertarget"},
		"headers":  {"https-head", "http-head"},
		"emails":   {"harvest", "whois-contacts"},
		"mx":       {"dns", "system-mx"},
		"breach":   {"hibp", "breachdirectory"},
		"geo":      {"ip-api", "otx"},
		"ip-whois": {"rdap-ip", "whois-ip"},
		"rdns":     {"system-ptr", "dns-ptr"},
		"services": {"shodan", "internetdb", "connect-scan"},
		"catalog":  {"sherlock", "live-probe"},
	}
	got := map[string][]string{
		"whois":    names(s.WhoisSources),
		"headers":  names(s.HeaderSources),
		"emails":   names(s.DomainEmailSources),
		"mx":       names(s.MXSources),
		"breach":   names(s.BreachSources),
		"geo":      names(s.GeoSources),
		"ip-whois": names(s.IPWhoisSources),
		"rdns":     names(s.ReverseDNSSources),
		"services": names(s.ServiceSources),
		"catalog":  names(s.CatalogSources),
	}
	for op, want := range checks {
		if len(got[op]) != len(want) {
			t.Errorf("%s tiers = %v, want %v", op, got[op], want)
			continue
		}
		for i := range want {
			if got[op][i] != want[i] {
				t.Errorf("%s tiers = %v, want %v", op, got[op], want)
				break
			}
		}
	}

	dnsTiers, err := s.DNSSources("TXT")
	if err != nil {
		t.Fatalf("DNSSources: %v", err)
	}
	if n := names(dnsTiers); len(n) != 3 || n[0] != "dns" || n[1] != "dig" || n[2] != "doh" {
		t.Errorf("dns tiers = %v", n)
	}
	if dnsTiers[0].Timeout() != cfg.Timeouts.DNSTXT {
		t.Errorf("TXT timeout = %v, want %v", dnsTiers[0].Timeout(), cfg.Timeouts.DNSTXT)
	}
}
