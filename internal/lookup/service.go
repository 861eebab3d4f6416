// Package lookup wires recon adapters into one fallback chain per operation
// and shapes each outcome into its response envelope.
package lookup

import (
	"context"
	"net/http"
	"time"

	"github.com/vulnverified/iseeyou/internal/config"
	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/internal/recon"
	"github.com/vulnverified/iseeyou/internal/synth"
	"github.com/vulnverified/iseeyou/pkg/sites"
)

// DefaultRecordTypes are queried when the caller names none.
var DefaultRecordTypes = []string{"A", "AAAA", "MX", "NS", "TXT", "SOA", "CNAME"}

// Service runs lookups. Each *Sources field lists adapters in tier order;
// tests replace them with fakes.
type Service struct {
	Generator *synth.Generator
	Catalog   []sites.Site
	Prober    *recon.Prober

	WhoisSources       []engine.Adapter
	DNSSources         func(recordType string) ([]engine.Adapter, error)
	HeaderSources      []engine.Adapter
	DomainEmailSources []engine.Adapter
	MXSources          []engine.Adapter
	BreachSources      []engine.Adapter
	GeoSources         []engine.Adapter
	IPWhoisSources     []engine.Adapter
	ReverseDNSSources  []engine.Adapter
	ServiceSources     []engine.Adapter
	CatalogSources     []engine.Adapter
}

// New builds a Service from cfg with the production adapters.
func New(cfg *config.Config) (*Service, error) {
	t := cfg.Timeouts
	opts := recon.Options{Client: &http.Client{}, UserAgent: cfg.UserAgent}
	resolver := recon.ResolverAddr(cfg.DNS.Resolver)
	whoisFn := recon.NewWhoisFunc(t.Whois)
	ipWhoisFn := recon.NewWhoisFunc(t.IPWhois)
	catalog := sites.All()
	prober := &recon.Prober{Opts: opts, Timeout: t.Probe, Interval: cfg.Username.Interval}

	mx, err := recon.NewDNSLookup(resolver, "MX", t.DNS)
	if err != nil {
		return nil, err
	}

	// The live probe walks the whole catalog, so its budget covers every
	// site plus the pacing between them.
	liveBudget := (t.Probe + cfg.Username.Interval) * time.Duration(len(catalog))

	return &Service{
		Generator: synth.New(cfg.Synth),
		Catalog:   catalog,
		Prober:    prober,

		WhoisSources: []engine.Adapter{
			recon.NewWhoisRegistry(whoisFn, t.Whois),
			recon.NewWhoisCLI(nil, t.WhoisCLI),
			recon.NewHackertarget(opts, t.Hackertarget),
		},
		DNSSources: func(recordType string) ([]engine.Adapter, error) {
			budget := t.DNS
			if recordType == "TXT" {
				budget = t.DNSTXT
			}
			direct, err := recon.NewDNSLookup(resolver, recordType, budget)
			if err != nil {
				return nil, err
			}
			doh, err := recon.NewDoH(opts, cfg.DNS.DoHURL, recordType, t.DoH)
			if err != nil {
				return nil, err
			}
			return []engine.Adapter{direct, recon.NewDig(nil, cfg.DNS.Resolver, recordType, t.Dig), doh}, nil
		},
		HeaderSources: []engine.Adapter{
			recon.NewHeadProbe(opts, "https", t.Headers),
			recon.NewHeadProbe(opts, "http", t.Headers),
		},
		DomainEmailSources: []engine.Adapter{
			recon.NewHarvest(opts, t.Harvest),
			recon.NewWhoisContacts(whoisFn, t.Whois),
		},
		MXSources: []engine.Adapter{
			mx,
			recon.NewSystemMX(nil, t.DNS),
		},
		BreachSources: []engine.Adapter{
			recon.NewHIBP(opts, cfg.Keys.HIBP, t.Breach),
			recon.NewBreachDirectory(opts, cfg.Keys.BreachDirectory, t.Breach),
		},
		GeoSources: []engine.Adapter{
			recon.NewIPAPI(opts, t.Geo),
			recon.NewOTXGeo(opts, t.Geo),
		},
		IPWhoisSources: []engine.Adapter{
			recon.NewRDAPIP(opts, t.RDAP),
			recon.NewWhoisIP(ipWhoisFn, t.IPWhois),
		},
		ReverseDNSSources: []engine.Adapter{
			recon.NewSystemPTR(nil, t.ReverseDNS),
			recon.NewDNSPTR(resolver, t.ReverseDNS),
		},
		ServiceSources: []engine.Adapter{
			recon.NewShodan(opts, cfg.Keys.Shodan, t.Shodan),
			recon.NewInternetDB(opts, t.Shodan),
			recon.NewConnectScan(cfg.Scan.Enabled, cfg.Scan.Concurrency, cfg.Scan.DialTimeout, t.Shodan),
		},
		CatalogSources: []engine.Adapter{
			recon.NewSherlock(nil, t.Probe, t.Sherlock),
			recon.NewLiveProbe(prober, catalog, cfg.Username.LiveProbe, liveBudget),
		},
	}, nil
}

type reporterKey struct{}

// WithReporter attaches r to ctx; every chain run under ctx reports to it.
func WithReporter(ctx context.Context, r engine.Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

func reporterFrom(ctx context.Context) engine.Reporter {
	r, _ := ctx.Value(reporterKey{}).(engine.Reporter)
	return r
}

func (s *Service) resolve(ctx context.Context, name string, adapters []engine.Adapter, synthesize engine.Synthesizer, q engine.Query) engine.Outcome {
	c := &engine.Chain{
		Name:     name,
		Adapters: adapters,
		Synth:    synthesize,
		Reporter: reporterFrom(ctx),
	}
	return c.Resolve(ctx, q)
}
