package recon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/vulnverified/iseeyou/internal/engine"
)

// WhoisFunc returns the raw WHOIS text for a domain or IP.
type WhoisFunc func(target string) (string, error)

// NewWhoisFunc returns a WhoisFunc backed by likexian/whois with the given timeout.
func NewWhoisFunc(timeout time.Duration) WhoisFunc {
	client := whois.NewClient().SetTimeout(timeout)
	return func(target string) (string, error) {
		return client.Whois(target)
	}
}

// queryWhois runs lookup in a goroutine so the caller's context bounds it.
func queryWhois(ctx context.Context, lookup WhoisFunc, target string) (string, error) {
	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := lookup(target)
		done <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("whois %s: %w", target, r.err)
		}
		return r.raw, nil
	}
}

// WhoisRegistry is the registry-lookup tier for domain WHOIS.
type WhoisRegistry struct {
	meta
	lookup WhoisFunc
}

// NewWhoisRegistry returns the "whois" adapter.
func NewWhoisRegistry(lookup WhoisFunc, timeout time.Duration) *WhoisRegistry {
	return &WhoisRegistry{meta: meta{"whois", timeout}, lookup: lookup}
}

func (a *WhoisRegistry) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	raw, err := queryWhois(ctx, a.lookup, q.Value)
	if err != nil {
		return nil, err
	}
	info, err := whoisparser.Parse(raw)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			return nil, fmt.Errorf("domain %s is not registered", q.Value)
		}
		return nil, fmt.Errorf("parse whois: %w", err)
	}
	return whoisPayload(info), nil
}

func (a *WhoisRegistry) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("registrar", "creation_date", "expiration_date", "name_servers")(p)
}

// whoisPayload flattens parsed WHOIS into the payload shape shared by all tiers.
func whoisPayload(info whoisparser.WhoisInfo) map[string]any {
	p := map[string]any{}
	if d := info.Domain; d != nil {
		p["domain_name"] = d.Domain
		p["whois_server"] = d.WhoisServer
		p["creation_date"] = d.CreatedDate
		p["updated_date"] = d.UpdatedDate
		p["expiration_date"] = d.ExpirationDate
		p["name_servers"] = lowerAll(d.NameServers)
		p["status"] = d.Status
		if d.DNSSec {
			p["dnssec"] = "signedDelegation"
		} else {
			p["dnssec"] = "unsigned"
		}
	}
	if r := info.Registrar; r != nil {
		p["registrar"] = r.Name
	}
	if r := info.Registrant; r != nil {
		p["org"] = r.Organization
		p["country"] = r.Country
	}
	p["emails"] = contactEmails(info)
	return p
}

// contactEmails collects the distinct non-placeholder contact addresses.
func contactEmails(info whoisparser.WhoisInfo) []string {
	seen := map[string]bool{}
	emails := []string{}
	for _, c := range []*whoisparser.Contact{info.Registrar, info.Registrant, info.Administrative, info.Technical, info.Billing} {
		if c == nil {
			continue
		}
		e := strings.ToLower(strings.TrimSpace(c.Email))
		if e == "" || !strings.Contains(e, "@") || engine.IsPlaceholder(e) || seen[e] {
			continue
		}
		seen[e] = true
		emails = append(emails, e)
	}
	return emails
}

func lowerAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, strings.TrimSuffix(strings.ToLower(s), "."))
	}
	return out
}

// WhoisContacts is the second tier for domain emails: contact addresses from WHOIS.
type WhoisContacts struct {
	meta
	lookup WhoisFunc
}

// NewWhoisContacts returns the "whois-contacts" adapter.
func NewWhoisContacts(lookup WhoisFunc, timeout time.Duration) *WhoisContacts {
	return &WhoisContacts{meta: meta{"whois-contacts", timeout}, lookup: lookup}
}

func (a *WhoisContacts) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	raw, err := queryWhois(ctx, a.lookup, q.Value)
	if err != nil {
		return nil, err
	}
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse whois: %w", err)
	}
	return map[string]any{"emails": contactEmails(info)}, nil
}

func (a *WhoisContacts) Meaningful(p map[string]any) bool {
	return engine.Extracted("emails")(p)
}

// WhoisIP is the text-scrape tier for IP WHOIS.
type WhoisIP struct {
	meta
	lookup WhoisFunc
}

// NewWhoisIP returns the "whois-ip" adapter.
func NewWhoisIP(lookup WhoisFunc, timeout time.Duration) *WhoisIP {
	return &WhoisIP{meta: meta{"whois-ip", timeout}, lookup: lookup}
}

func (a *WhoisIP) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	raw, err := queryWhois(ctx, a.lookup, q.Value)
	if err != nil {
		return nil, err
	}
	return scrapeWHOIS(raw, networkSchema), nil
}

func (a *WhoisIP) Meaningful(p map[string]any) bool {
	return engine.Extracted("range", "cidr", "name", "org")(p)
}
