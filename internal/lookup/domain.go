package lookup

import (
	"context"
	"net"
	"strings"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// DomainWhois resolves registration data for a domain.
func (s *Service) DomainWhois(ctx context.Context, domain string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindDomain, domain)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "whois", s.WhoisSources, engine.SynthFunc(func(q engine.Query) map[string]any {
		return s.Generator.WHOIS(q.Value)
	}), q)
	return engine.Assembler{QueryField: "domain", PayloadField: "whois_data"}.Assemble(out)
}

// DomainDNS resolves each requested record type through its own chain. An
// empty types list means DefaultRecordTypes.
func (s *Service) DomainDNS(ctx context.Context, domain string, types []string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindDomain, domain)
	if err != nil {
		return nil, err
	}
	types, err = ParseRecordTypes(types)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[string]engine.Outcome, len(types))
	for _, t := range types {
		adapters, err := s.DNSSources(t)
		if err != nil {
			return nil, err
		}
		outcomes[t] = s.resolve(ctx, "dns/"+t, adapters, engine.SynthFunc(func(q engine.Query) map[string]any {
			return s.Generator.DNS(q.Value, t)
		}), q)
	}
	return engine.AssembleRecords(q.Value, types, outcomes)
}

// supportedRecordTypes are the types a caller may request.
var supportedRecordTypes = map[string]bool{
	"A": true, "AAAA": true, "MX": true, "NS": true, "TXT": true,
	"SOA": true, "CNAME": true, "PTR": true, "SRV": true, "CAA": true,
}

// ParseRecordTypes upper-cases and de-duplicates types, rejecting any outside
// the supported set.
func ParseRecordTypes(types []string) ([]string, error) {
	if len(types) == 0 {
		return DefaultRecordTypes, nil
	}
	out := make([]string, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if !supportedRecordTypes[t] {
			return nil, &engine.ValidationError{Field: "record_types", Value: t, Err: engine.ErrUnsupportedRecordType}
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return DefaultRecordTypes, nil
	}
	return out, nil
}

// DomainHeaders fetches response headers for a site. domain may carry an
// http:// or https:// prefix, which pins the scheme; otherwise HTTPS is tried
// before HTTP. A port in domain is ignored.
func (s *Service) DomainHeaders(ctx context.Context, domain string) (engine.Envelope, error) {
	host, scheme := splitScheme(domain)
	q, err := engine.ParseQuery(engine.KindDomain, host)
	if err != nil {
		return nil, err
	}

	adapters := s.HeaderSources
	if scheme != "" {
		adapters = nil
		for _, a := range s.HeaderSources {
			if a.Name() == scheme+"-head" {
				adapters = append(adapters, a)
			}
		}
	}

	out := s.resolve(ctx, "headers", adapters, nil, q)
	return engine.Assembler{QueryField: "domain"}.Assemble(out)
}

// splitScheme strips a leading scheme and anything after the host. Userinfo
// and an explicit port are dropped too: the query names a domain, and the
// header tiers always probe the scheme's default port.
func splitScheme(raw string) (host, scheme string) {
	host = strings.TrimSpace(raw)
	lower := strings.ToLower(host)
	for _, sch := range []string{"https", "http"} {
		if strings.HasPrefix(lower, sch+"://") {
			scheme = sch
			host = host[len(sch)+3:]
			break
		}
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host, scheme
}

// DomainEmails looks for addresses published for a domain.
func (s *Service) DomainEmails(ctx context.Context, domain string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindDomain, domain)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "domain-emails", s.DomainEmailSources, engine.SynthFunc(func(q engine.Query) map[string]any {
		return s.Generator.DomainEmails(q.Value)
	}), q)
	return engine.Assembler{QueryField: "domain"}.Assemble(out)
}
