package synth

import (
	"net/http"
	"unicode/utf8"

	"github.com/vulnverified/iseeyou/pkg/sites"
)

// Usernames synthesizes a catalog scan for username.
//
// Draw order: base probability (BaseProbMin + (BaseProbMax-BaseProbMin)*Float64),
// then one Float64 per catalog site in catalog order, compared against the
// site's probability. Popular sites get PopularBoost (capped at PopularCap)
// when the username length is within [PopularMinLen, PopularMaxLen].
func (g *Generator) Usernames(username string, catalog []sites.Site) map[string]any {
	p := g.Params
	r := stream(username, streamUsername)

	base := p.BaseProbMin + (p.BaseProbMax-p.BaseProbMin)*r.Float64()
	n := utf8.RuneCountInString(username)
	boosted := n >= p.PopularMinLen && n <= p.PopularMaxLen

	results := make([]sites.Result, 0, len(catalog))
	for _, s := range catalog {
		prob := base
		if boosted && s.Popular {
			prob = min(prob+p.PopularBoost, p.PopularCap)
		}
		exists := r.Float64() < prob

		status := http.StatusNotFound
		if exists {
			status = http.StatusOK
		}
		results = append(results, sites.Result{
			Site:       s.Name,
			URL:        s.ProfileURL(username),
			Exists:     exists,
			StatusCode: status,
		})
	}
	sites.SortResults(results)

	return map[string]any{
		"found_on":    sites.CountFound(results),
		"total_sites": len(results),
		"results":     results,
	}
}
