package recon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/vulnverified/iseeyou/internal/engine"
)

// SystemResolver is the subset of *net.Resolver the system tiers use.
type SystemResolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

func systemResolver(r SystemResolver) SystemResolver {
	if r != nil {
		return r
	}
	return net.DefaultResolver
}

// classifyDNSError returns "NXDOMAIN" or "SERVFAIL" based on the DNS error type.
func classifyDNSError(err error) string {
	if err == nil {
		return ""
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return "NXDOMAIN"
		}
		return "SERVFAIL"
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "no such host") {
		return "NXDOMAIN"
	}
	if strings.Contains(errStr, "server misbehaving") {
		return "SERVFAIL"
	}

	return ""
}

// SystemPTR is the reverse-DNS tier using the operating system resolver.
type SystemPTR struct {
	meta
	resolver SystemResolver
}

// NewSystemPTR returns the "system-ptr" adapter. A nil resolver uses net.DefaultResolver.
func NewSystemPTR(r SystemResolver, timeout time.Duration) *SystemPTR {
	return &SystemPTR{meta: meta{"system-ptr", timeout}, resolver: systemResolver(r)}
}

func (a *SystemPTR) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	names, err := a.resolver.LookupAddr(ctx, q.Value)
	if err != nil {
		if classifyDNSError(err) == "NXDOMAIN" {
			return map[string]any{"hostnames": []string{}, "rcode": "NXDOMAIN"}, nil
		}
		return nil, fmt.Errorf("reverse lookup %s: %w", q.Value, err)
	}
	return map[string]any{"hostnames": trimDots(names), "rcode": "NOERROR"}, nil
}

func (a *SystemPTR) Meaningful(p map[string]any) bool { return engine.Answered(p) }

// DNSPTR is the reverse-DNS tier querying PTR records directly.
type DNSPTR struct {
	meta
	server string
}

// NewDNSPTR returns the "dns-ptr" adapter.
func NewDNSPTR(server string, timeout time.Duration) *DNSPTR {
	return &DNSPTR{meta: meta{"dns-ptr", timeout}, server: server}
}

func (a *DNSPTR) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	arpa, err := dns.ReverseAddr(q.Value)
	if err != nil {
		return nil, err
	}
	names, rcode, err := exchange(ctx, a.timeout, a.server, arpa, dns.TypePTR)
	if err != nil {
		return nil, err
	}
	return map[string]any{"hostnames": trimDots(names), "rcode": rcode}, nil
}

func (a *DNSPTR) Meaningful(p map[string]any) bool { return engine.Answered(p) }

// SystemMX is the MX tier using the operating system resolver. It accepts
// domain or email queries.
type SystemMX struct {
	meta
	resolver SystemResolver
}

// NewSystemMX returns the "system-mx" adapter.
func NewSystemMX(r SystemResolver, timeout time.Duration) *SystemMX {
	return &SystemMX{meta: meta{"system-mx", timeout}, resolver: systemResolver(r)}
}

func (a *SystemMX) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	name := q.Value
	if q.Kind == engine.KindEmail {
		name = engine.EmailDomain(q.Value)
	}
	mxs, err := a.resolver.LookupMX(ctx, name)
	if err != nil {
		if classifyDNSError(err) == "NXDOMAIN" {
			return map[string]any{"records": []string{}, "rcode": "NXDOMAIN"}, nil
		}
		return nil, fmt.Errorf("MX lookup %s: %w", name, err)
	}
	records := make([]string, 0, len(mxs))
	for _, mx := range mxs {
		records = append(records, fmt.Sprintf("%d %s", mx.Pref, dns.Fqdn(mx.Host)))
	}
	return map[string]any{"records": records, "rcode": "NOERROR"}, nil
}

func (a *SystemMX) Meaningful(p map[string]any) bool { return engine.Answered(p) }

func trimDots(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.TrimSuffix(n, "."))
	}
	return out
}
