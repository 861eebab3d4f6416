package lookup

import (
	"context"
	"strings"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// EmailValidate checks an address's format and whether its domain accepts
// mail. A malformed address is a valid answer (format_valid false), not an
// error; only a missing address is rejected. MX data is never synthesized.
func (s *Service) EmailValidate(ctx context.Context, email string) (engine.Envelope, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &engine.ValidationError{Field: string(engine.KindEmail), Err: engine.ErrMissingValue}
	}

	env := engine.Envelope{
		"email":          email,
		"format_valid":   false,
		"domain":         nil,
		"has_mx_records": false,
		"mx_records":     []string{},
	}
	if !engine.ValidEmail(email) {
		return env, nil
	}

	q := engine.Query{Kind: engine.KindEmail, Value: email}
	out := s.resolve(ctx, "mx", s.MXSources, nil, q)

	env["format_valid"] = true
	env["domain"] = engine.EmailDomain(email)
	env["source"] = out.Source
	if out.Exhausted() {
		env["warnings"] = out.Warnings
		return env, nil
	}
	if out.Tier > 1 {
		env["warnings"] = out.Warnings
	}

	hosts := mxHosts(engine.Strings(out.Payload["records"]))
	env["mx_records"] = hosts
	env["has_mx_records"] = len(hosts) > 0
	return env, nil
}

// mxHosts drops the preference from "10 mx.example.com." records.
func mxHosts(records []string) []string {
	hosts := make([]string, 0, len(records))
	for _, r := range records {
		fields := strings.Fields(r)
		if len(fields) == 0 {
			continue
		}
		hosts = append(hosts, fields[len(fields)-1])
	}
	return hosts
}

// EmailBreaches checks whether an address appears in known breaches.
func (s *Service) EmailBreaches(ctx context.Context, email string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindEmail, email)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "breach", s.BreachSources, engine.SynthFunc(func(q engine.Query) map[string]any {
		return s.Generator.Breaches(q.Value)
	}), q)
	return engine.Assembler{QueryField: "email"}.Assemble(out)
}
