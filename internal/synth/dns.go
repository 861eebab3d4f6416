package synth

import (
	"fmt"
	"strings"
)

var docNets = []string{"192.0.2", "198.51.100", "203.0.113"}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// dnsStreams gives each record type its own stream so that requesting a
// subset of types does not change the records of the others.
var dnsStreams = map[string]uint64{
	"A": 1, "AAAA": 2, "MX": 3, "NS": 4, "TXT": 5, "SOA": 6, "CNAME": 7,
}

// DNS synthesizes the records of one type for domain. Addresses come from
// the documentation ranges (RFC 5737, RFC 3849). CNAME at a zone apex is
// always empty.
//
// Draw order per type:
//   - A: count (1 + IntN(2)), then per address network index and host (1 + IntN(254))
//   - AAAA: count (1 + IntN(2)), then per address host (1 + IntN(0xfffe))
//   - MX: count (1 + IntN(2))
//   - NS: name server pattern, count (2 + IntN(3))
//   - TXT: SPF include, verification flag (Float64 < 0.5), then 43 token characters if set
//   - SOA: name server pattern, count, year (2019 + IntN(6)), month, day, revision
func (g *Generator) DNS(domain, recordType string) map[string]any {
	rt := strings.ToUpper(recordType)
	s, ok := dnsStreams[rt]
	if !ok {
		return map[string]any{"records": []string{}}
	}
	r := stream(domain, streamDNS<<8|s)

	var records []string
	switch rt {
	case "A":
		n := 1 + r.IntN(2)
		for range n {
			prefix := pick(r, docNets)
			records = append(records, fmt.Sprintf("%s.%d", prefix, 1+r.IntN(254)))
		}
	case "AAAA":
		n := 1 + r.IntN(2)
		for range n {
			records = append(records, fmt.Sprintf("2001:db8::%x", 1+r.IntN(0xfffe)))
		}
	case "MX":
		n := 1 + r.IntN(2)
		for i := range n {
			records = append(records, fmt.Sprintf("%d mx%d.%s.", 10*(i+1), i+1, domain))
		}
	case "NS":
		for _, ns := range drawNameServers(r) {
			records = append(records, ns+".")
		}
	case "TXT":
		records = append(records, fmt.Sprintf("\"v=spf1 include:%s ~all\"", pick(r, spfIncludes)))
		if r.Float64() < 0.5 {
			var b strings.Builder
			for range 43 {
				b.WriteByte(tokenAlphabet[r.IntN(len(tokenAlphabet))])
			}
			records = append(records, fmt.Sprintf("\"google-site-verification=%s\"", b.String()))
		}
	case "SOA":
		primary := drawNameServers(r)[0]
		serial := fmt.Sprintf("%04d%02d%02d%02d", 2019+r.IntN(6), 1+r.IntN(12), 1+r.IntN(28), r.IntN(100))
		records = append(records, fmt.Sprintf("%s. hostmaster.%s. %s 7200 3600 1209600 3600", primary, domain, serial))
	}

	if records == nil {
		records = []string{}
	}
	return map[string]any{"records": records}
}
