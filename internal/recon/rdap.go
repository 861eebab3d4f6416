package recon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const (
	rdapBaseURL = "https://rdap.org/ip/%s"
	rdapMaxBody = 1024 * 1024
)

type rdapNetwork struct {
	Handle       string       `json:"handle"`
	StartAddress string       `json:"startAddress"`
	EndAddress   string       `json:"endAddress"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Country      string       `json:"country"`
	Cidrs        []rdapCIDR   `json:"cidr0_cidrs"`
	Entities     []rdapEntity `json:"entities"`
	Events       []rdapEvent  `json:"events"`
	Remarks      []rdapRemark `json:"remarks"`
}

type rdapCIDR struct {
	V4Prefix string `json:"v4prefix"`
	V6Prefix string `json:"v6prefix"`
	Length   int    `json:"length"`
}

type rdapEntity struct {
	Roles      []string     `json:"roles"`
	VCardArray []any        `json:"vcardArray"`
	Entities   []rdapEntity `json:"entities"`
}

type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type rdapRemark struct {
	Description []string `json:"description"`
}

// RDAPIP is the primary IP WHOIS tier, using the rdap.org bootstrap redirector.
type RDAPIP struct {
	meta
	opts    Options
	baseURL string
}

// NewRDAPIP returns the "rdap-ip" adapter.
func NewRDAPIP(opts Options, timeout time.Duration) *RDAPIP {
	return &RDAPIP{meta: meta{"rdap-ip", timeout}, opts: opts, baseURL: rdapBaseURL}
}

func (a *RDAPIP) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	resp, err := fetch(ctx, a.opts, request{
		source:  a.name,
		url:     fmt.Sprintf(a.baseURL, q.Value),
		headers: map[string]string{"Accept": "application/rdap+json"},
		maxBody: rdapMaxBody,
	})
	if err != nil {
		return nil, err
	}
	return parseRDAPResponse(resp.body)
}

func (a *RDAPIP) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("range", "cidr", "name", "org")(p)
}

func parseRDAPResponse(body []byte) (map[string]any, error) {
	var n rdapNetwork
	if err := sonic.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("rdap JSON parse: %w", err)
	}

	out := map[string]any{
		"handle":  n.Handle,
		"name":    n.Name,
		"type":    n.Type,
		"country": n.Country,
	}
	if n.StartAddress != "" && n.EndAddress != "" {
		out["range"] = n.StartAddress + " - " + n.EndAddress
	}

	var cidrs []string
	for _, c := range n.Cidrs {
		prefix := c.V4Prefix
		if prefix == "" {
			prefix = c.V6Prefix
		}
		if prefix != "" {
			cidrs = append(cidrs, fmt.Sprintf("%s/%d", prefix, c.Length))
		}
	}
	if len(cidrs) > 0 {
		out["cidr"] = strings.Join(cidrs, ", ")
	}

	for _, e := range n.Events {
		switch e.Action {
		case "registration":
			out["created"] = e.Date
		case "last changed":
			out["updated"] = e.Date
		}
	}

	for _, r := range n.Remarks {
		if len(r.Description) > 0 {
			out["description"] = strings.Join(r.Description, " ")
			break
		}
	}

	walkEntities(n.Entities, func(e rdapEntity) {
		for _, role := range e.Roles {
			switch role {
			case "registrant":
				if _, ok := out["org"]; !ok {
					if fn := vcardValue(e.VCardArray, "fn"); fn != "" {
						out["org"] = fn
					}
				}
			case "abuse":
				if _, ok := out["abuse_email"]; !ok {
					if email := vcardValue(e.VCardArray, "email"); email != "" {
						out["abuse_email"] = strings.ToLower(email)
					}
				}
			}
		}
	})
	return out, nil
}

func walkEntities(entities []rdapEntity, fn func(rdapEntity)) {
	for _, e := range entities {
		fn(e)
		walkEntities(e.Entities, fn)
	}
}

// vcardValue returns the text value of the first jCard property named prop.
// A jCard is ["vcard", [[name, params, type, value], ...]].
func vcardValue(card []any, prop string) string {
	if len(card) < 2 {
		return ""
	}
	props, ok := card[1].([]any)
	if !ok {
		return ""
	}
	for _, p := range props {
		fields, ok := p.([]any)
		if !ok || len(fields) < 4 {
			continue
		}
		if name, _ := fields[0].(string); name != prop {
			continue
		}
		if v, ok := fields[3].(string); ok {
			return v
		}
	}
	return ""
}
