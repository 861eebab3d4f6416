package synth

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vulnverified/iseeyou/pkg/ports"
)

// Services synthesizes a service-scan record for ip.
//
// Draw order: port count (MinPorts + IntN(MaxPorts-MinPorts+1)), catalog
// permutation, then per chosen service in port order a jitter roll
// (Float64 < PatchJitter) followed by the patch bump (1 + IntN(9)) when the
// roll hits, then OS, hosting org, vuln roll (Float64 < VulnChance) and, when
// it hits, the vuln count (1 + IntN(MaxVulns)) and per vuln year
// (2018 + IntN(7)), number (1000 + IntN(39000)), CVSS tenths (40 + IntN(61))
// and affected port index.
func (g *Generator) Services(ip string) map[string]any {
	p := g.Params
	r := stream(ip, streamServices)

	n := p.MinPorts + r.IntN(p.MaxPorts-p.MinPorts+1)
	n = min(n, len(ports.Catalog))
	chosen := r.Perm(len(ports.Catalog))[:n]
	sort.Ints(chosen)

	portList := make([]int, 0, n)
	services := make([]map[string]any, 0, n)
	for _, i := range chosen {
		s := ports.Catalog[i]
		version := s.Version
		if r.Float64() < p.PatchJitter {
			version = bumpPatch(version, 1+r.IntN(9))
		}
		portList = append(portList, s.Port)
		services = append(services, map[string]any{
			"port":      s.Port,
			"transport": s.Transport,
			"service":   s.Name,
			"product":   s.Product,
			"version":   version,
		})
	}

	osName := pick(r, operatingSystems)
	org := pick(r, hostingOrgs)

	vulns := []map[string]any{}
	if p.MaxVulns > 0 && r.Float64() < p.VulnChance {
		k := 1 + r.IntN(p.MaxVulns)
		for range k {
			id := fmt.Sprintf("CVE-%d-%d", 2018+r.IntN(7), 1000+r.IntN(39000))
			cvss := float64(40+r.IntN(61)) / 10
			port := portList[r.IntN(len(portList))]
			vulns = append(vulns, map[string]any{"id": id, "cvss": cvss, "port": port})
		}
	}

	return map[string]any{
		"ip":        ip,
		"ports":     portList,
		"services":  services,
		"os":        osName,
		"org":       org,
		"hostnames": []string{},
		"vulns":     vulns,
	}
}

// bumpPatch adds delta to the last numeric component of a dotted version.
func bumpPatch(version string, delta int) string {
	i := strings.LastIndex(version, ".")
	if i < 0 {
		return version
	}
	patch, err := strconv.Atoi(version[i+1:])
	if err != nil {
		return version
	}
	return version[:i+1] + strconv.Itoa(patch+delta)
}
