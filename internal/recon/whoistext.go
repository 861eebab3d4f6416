package recon

import (
	"strings"
)

// textSchema maps lower-cased WHOIS labels to payload fields. Fields listed
// in lists collect every value; the others keep the first one seen.
type textSchema struct {
	labels map[string]string
	lists  map[string]bool
}

var domainSchema = textSchema{
	labels: map[string]string{
		"domain name":                            "domain_name",
		"domain":                                 "domain_name",
		"registrar":                              "registrar",
		"registrar name":                         "registrar",
		"sponsoring registrar":                   "registrar",
		"registrar whois server":                 "whois_server",
		"whois server":                           "whois_server",
		"creation date":                          "creation_date",
		"created":                                "creation_date",
		"created on":                             "creation_date",
		"registered on":                          "creation_date",
		"registration time":                      "creation_date",
		"registry expiry date":                   "expiration_date",
		"registrar registration expiration date": "expiration_date",
		"expiration date":                        "expiration_date",
		"expiry date":                            "expiration_date",
		"expires":                                "expiration_date",
		"expires on":                             "expiration_date",
		"paid-till":                              "expiration_date",
		"updated date":                           "updated_date",
		"last updated":                           "updated_date",
		"name server":                            "name_servers",
		"nameserver":                             "name_servers",
		"nserver":                                "name_servers",
		"domain status":                          "status",
		"status":                                 "status",
		"registrar abuse contact email":          "emails",
		"registrant email":                       "emails",
		"admin email":                            "emails",
		"tech email":                             "emails",
		"e-mail":                                 "emails",
		"registrant organization":                "org",
		"registrant":                             "org",
		"org":                                    "org",
		"registrant country":                     "country",
		"country":                                "country",
		"dnssec":                                 "dnssec",
	},
	lists: map[string]bool{"name_servers": true, "status": true, "emails": true},
}

var networkSchema = textSchema{
	labels: map[string]string{
		"netrange":      "range",
		"inetnum":       "range",
		"inet6num":      "range",
		"cidr":          "cidr",
		"route":         "cidr",
		"route6":        "cidr",
		"netname":       "name",
		"orgname":       "org",
		"org-name":      "org",
		"owner":         "org",
		"descr":         "description",
		"country":       "country",
		"originas":      "asn",
		"origin":        "asn",
		"orgabuseemail": "abuse_email",
		"abuse-mailbox": "abuse_email",
		"regdate":       "created",
		"created":       "created",
		"updated":       "updated",
		"last-modified": "updated",
	},
	lists: map[string]bool{},
}

// scrapeWHOIS extracts "Label: value" pairs from raw WHOIS text.
func scrapeWHOIS(raw string, schema textSchema) map[string]any {
	out := make(map[string]any)
	lists := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">>>") {
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field, ok := schema.labels[strings.ToLower(strings.TrimSpace(label))]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if !schema.lists[field] {
			if _, exists := out[field]; !exists {
				out[field] = value
			}
			continue
		}

		switch field {
		case "name_servers":
			value = strings.TrimSuffix(strings.ToLower(strings.Fields(value)[0]), ".")
		case "status":
			value = strings.Fields(value)[0]
		case "emails":
			value = strings.ToLower(value)
		}
		if seen[field] == nil {
			seen[field] = make(map[string]bool)
		}
		if !seen[field][value] {
			seen[field][value] = true
			lists[field] = append(lists[field], value)
		}
	}

	for field, values := range lists {
		out[field] = values
	}
	return out
}
