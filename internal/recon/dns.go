package recon

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const fallbackResolver = "8.8.8.8:53"

// ResolverAddr returns configured if set, otherwise the first nameserver in
// /etc/resolv.conf, otherwise a public resolver. A missing port defaults to 53.
func ResolverAddr(configured string) string {
	if configured != "" {
		if _, _, err := net.SplitHostPort(configured); err == nil {
			return configured
		}
		return net.JoinHostPort(configured, "53")
	}
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		return fallbackResolver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// RecordType parses a record type name such as "MX".
func RecordType(name string) (uint16, error) {
	t, ok := dns.StringToType[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", engine.ErrUnsupportedRecordType, name)
	}
	return t, nil
}

// exchange sends one question to server and returns the rdata text of the
// answers of type qtype plus the response code name. Truncated UDP answers
// are repeated over TCP. NXDOMAIN is an answer, not an error.
func exchange(ctx context.Context, timeout time.Duration, server, name string, qtype uint16) ([]string, string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	client := &dns.Client{Timeout: timeout}
	r, _, err := client.ExchangeContext(ctx, m, server)
	if err == nil && r.Truncated {
		client.Net = "tcp"
		r, _, err = client.ExchangeContext(ctx, m, server)
	}
	if err != nil {
		return nil, "", fmt.Errorf("query %s %s: %w", name, dns.TypeToString[qtype], err)
	}

	switch r.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return []string{}, dns.RcodeToString[r.Rcode], nil
	default:
		return nil, "", fmt.Errorf("query %s %s: %s", name, dns.TypeToString[qtype], dns.RcodeToString[r.Rcode])
	}

	records := []string{}
	for _, rr := range r.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		records = append(records, rdata(rr))
	}
	return records, dns.RcodeToString[r.Rcode], nil
}

// rdata renders the data part of rr in zone-file form.
func rdata(rr dns.RR) string {
	return strings.TrimSpace(strings.TrimPrefix(rr.String(), rr.Header().String()))
}

// DNSLookup is the resolver-lookup tier for one record type.
type DNSLookup struct {
	meta
	server string
	qtype  uint16
}

// NewDNSLookup returns the "dns" adapter for recordType against server (host:port).
func NewDNSLookup(server, recordType string, timeout time.Duration) (*DNSLookup, error) {
	qtype, err := RecordType(recordType)
	if err != nil {
		return nil, err
	}
	return &DNSLookup{meta: meta{"dns", timeout}, server: server, qtype: qtype}, nil
}

func (a *DNSLookup) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	name := q.Value
	if q.Kind == engine.KindEmail {
		name = engine.EmailDomain(q.Value)
	}
	records, rcode, err := exchange(ctx, a.timeout, a.server, name, a.qtype)
	if err != nil {
		return nil, err
	}
	return map[string]any{"records": records, "rcode": rcode}, nil
}

func (a *DNSLookup) Meaningful(p map[string]any) bool { return engine.Answered(p) }
