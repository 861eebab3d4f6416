package main

import (
	"context"

	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/internal/lookup"
)

type lookupArgs struct {
	recordTypes []string
	limit       int
}

type operation func(ctx context.Context, svc *lookup.Service, value string, args lookupArgs) (engine.Envelope, error)

// single adapts a one-value lookup method to an operation.
func single(fn func(*lookup.Service, context.Context, string) (engine.Envelope, error)) operation {
	return func(ctx context.Context, svc *lookup.Service, value string, _ lookupArgs) (engine.Envelope, error) {
		return fn(svc, ctx, value)
	}
}

// operations mirrors the HTTP routes, keyed by CLI name.
var operations = map[string]operation{
	"whois":         single((*lookup.Service).DomainWhois),
	"headers":       single((*lookup.Service).DomainHeaders),
	"domain-emails": single((*lookup.Service).DomainEmails),
	"validate":      single((*lookup.Service).EmailValidate),
	"breach":        single((*lookup.Service).EmailBreaches),
	"geo":           single((*lookup.Service).IPGeolocation),
	"ip-whois":      single((*lookup.Service).IPWhois),
	"rdns":          single((*lookup.Service).IPReverseDNS),
	"shodan":        single((*lookup.Service).IPServices),
	"sherlock":      single((*lookup.Service).UsernameCatalog),
	"dns": func(ctx context.Context, svc *lookup.Service, value string, args lookupArgs) (engine.Envelope, error) {
		return svc.DomainDNS(ctx, value, args.recordTypes)
	},
	"username": func(ctx context.Context, svc *lookup.Service, value string, args lookupArgs) (engine.Envelope, error) {
		return svc.UsernameSearch(ctx, value, args.limit)
	},
}
