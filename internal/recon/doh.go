package recon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/miekg/dns"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const (
	dohBaseURL = "https://dns.google/resolve"
	dohMaxBody = 512 * 1024
)

type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

type dohAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

// DoH is the DNS-over-HTTPS tier using a JSON resolver API.
type DoH struct {
	meta
	opts    Options
	baseURL string
	qtype   uint16
}

// NewDoH returns the "doh" adapter. endpoint may be empty for the default.
func NewDoH(opts Options, endpoint, recordType string, timeout time.Duration) (*DoH, error) {
	qtype, err := RecordType(recordType)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		endpoint = dohBaseURL
	}
	return &DoH{meta: meta{"doh", timeout}, opts: opts, baseURL: endpoint, qtype: qtype}, nil
}

func (a *DoH) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	v := url.Values{}
	v.Set("name", q.Value)
	v.Set("type", strconv.Itoa(int(a.qtype)))

	resp, err := fetch(ctx, a.opts, request{
		source:  "doh",
		url:     a.baseURL + "?" + v.Encode(),
		headers: map[string]string{"Accept": "application/dns-json"},
		maxBody: dohMaxBody,
	})
	if err != nil {
		return nil, err
	}
	return parseDoHResponse(resp.body, a.qtype)
}

func (a *DoH) Meaningful(p map[string]any) bool { return engine.Answered(p) }

func parseDoHResponse(body []byte, qtype uint16) (map[string]any, error) {
	var r dohResponse
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("doh JSON parse: %w", err)
	}

	rcode, ok := dns.RcodeToString[r.Status]
	if !ok {
		rcode = strconv.Itoa(r.Status)
	}
	switch r.Status {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, fmt.Errorf("doh: %s", rcode)
	}

	records := []string{}
	for _, ans := range r.Answer {
		if uint16(ans.Type) != qtype {
			continue
		}
		data := strings.TrimSpace(ans.Data)
		if qtype == dns.TypeTXT && !strings.HasPrefix(data, `"`) {
			data = strconv.Quote(data)
		}
		records = append(records, data)
	}
	return map[string]any{"records": records, "rcode": rcode}, nil
}
