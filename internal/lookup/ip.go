package lookup

import (
	"context"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// IPGeolocation locates an address. Locations are never synthesized.
func (s *Service) IPGeolocation(ctx context.Context, ip string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindIP, ip)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "geo", s.GeoSources, nil, q)
	return engine.Assembler{QueryField: "ip", PayloadField: "geolocation"}.Assemble(out)
}

// IPWhois resolves network registration data for an address.
func (s *Service) IPWhois(ctx context.Context, ip string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindIP, ip)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "ip-whois", s.IPWhoisSources, nil, q)
	return engine.Assembler{QueryField: "ip", PayloadField: "whois_data"}.Assemble(out)
}

// NoHostnameMessage accompanies a reverse lookup that found no PTR record.
const NoHostnameMessage = "No hostname found for this IP address"

// IPReverseDNS resolves PTR names for an address. hostname is the first
// name, or null when the address has none.
func (s *Service) IPReverseDNS(ctx context.Context, ip string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindIP, ip)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "reverse-dns", s.ReverseDNSSources, nil, q)
	if out.Exhausted() {
		return engine.Assembler{QueryField: "ip"}.Assemble(out)
	}

	hostnames := engine.Strings(out.Payload["hostnames"])
	env := engine.Envelope{
		"ip":        q.Value,
		"hostname":  nil,
		"hostnames": hostnames,
		"source":    out.Source,
	}
	if len(hostnames) > 0 {
		env["hostname"] = hostnames[0]
	} else {
		env["message"] = NoHostnameMessage
	}
	if out.Tier > 1 {
		env["warnings"] = out.Warnings
	}
	return env, nil
}

// IPServices reports open ports and services for an address.
func (s *Service) IPServices(ctx context.Context, ip string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindIP, ip)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "shodan", s.ServiceSources, engine.SynthFunc(func(q engine.Query) map[string]any {
		return s.Generator.Services(q.Value)
	}), q)
	return engine.Assembler{QueryField: "ip", PayloadField: "shodan_data"}.Assemble(out)
}
