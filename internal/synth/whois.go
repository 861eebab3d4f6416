package synth

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const dateLayout = "2006-01-02T15:04:05Z"

// WHOIS synthesizes a registration record for domain.
//
// Draw order: registrar, creation offset (365 + IntN(365*19+1) days before
// now), expiry offset (365 + IntN(365*9+1) days after now), name server
// pattern, name server count (2 + IntN(3)), status count (1 + IntN(3)),
// status permutation, DNSSEC (Float64 < 0.3), registrant org, country.
func (g *Generator) WHOIS(domain string) map[string]any {
	r := stream(domain, streamWHOIS)

	reg := pick(r, registrars)
	createdDays := 365 + r.IntN(365*19+1)
	expiryDays := 365 + r.IntN(365*9+1)
	nameServers := drawNameServers(r)

	nStatus := 1 + r.IntN(3)
	perm := r.Perm(len(domainStatuses))
	status := make([]string, 0, nStatus)
	for _, i := range perm[:nStatus] {
		status = append(status, domainStatuses[i])
	}

	dnssec := "unsigned"
	if r.Float64() < 0.3 {
		dnssec = "signedDelegation"
	}
	org := pick(r, registrantOrgs)
	country := pick(r, countries)

	today := g.Now().UTC().Truncate(24 * time.Hour)

	return map[string]any{
		"domain_name":     domain,
		"registrar":       reg.Name,
		"whois_server":    reg.WhoisServer,
		"creation_date":   today.AddDate(0, 0, -createdDays).Format(dateLayout),
		"expiration_date": today.AddDate(0, 0, expiryDays).Format(dateLayout),
		"name_servers":    nameServers,
		"status":          status,
		"emails":          []string{"abuse@" + reg.AbuseDomain},
		"dnssec":          dnssec,
		"org":             org,
		"country":         country,
	}
}

// drawNameServers draws a pattern then a count of 2 to 4.
func drawNameServers(r *rand.Rand) []string {
	pattern := pick(r, nameServerPatterns)
	n := 2 + r.IntN(3)
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(pattern, i+1)
	}
	return out
}
