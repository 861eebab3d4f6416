package lookup

import (
	"context"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// UsernameSearch probes the first limit catalog sites live, in catalog
// order. limit <= 0 checks every site. Per-site failures are reported on
// the site's result.
func (s *Service) UsernameSearch(ctx context.Context, username string, limit int) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindUsername, username)
	if err != nil {
		return nil, err
	}
	catalog := s.Catalog
	if limit > 0 && limit < len(catalog) {
		catalog = catalog[:limit]
	}
	return engine.Envelope{
		"username": q.Value,
		"results":  s.Prober.Probe(ctx, q.Value, catalog),
	}, nil
}

// UsernameCatalog runs the full catalog scan, falling back to synthetic
// results when no live tier answers.
func (s *Service) UsernameCatalog(ctx context.Context, username string) (engine.Envelope, error) {
	q, err := engine.ParseQuery(engine.KindUsername, username)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, "sherlock", s.CatalogSources, engine.SynthFunc(func(q engine.Query) map[string]any {
		return s.Generator.Usernames(q.Value, s.Catalog)
	}), q)
	return engine.Assembler{QueryField: "username"}.Assemble(out)
}
