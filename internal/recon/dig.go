package recon

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
)

var digStatusRegex = regexp.MustCompile(`status: ([A-Z]+)`)

// Dig is the subprocess tier for DNS: runs dig(1) and scrapes the answer section.
type Dig struct {
	meta
	run        CommandRunner
	server     string
	recordType string
}

// NewDig returns the "dig" adapter. server may be empty to use dig's default.
func NewDig(run CommandRunner, server, recordType string, timeout time.Duration) *Dig {
	return &Dig{
		meta:       meta{"dig", timeout},
		run:        runner(run),
		server:     server,
		recordType: strings.ToUpper(recordType),
	}
}

func (a *Dig) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	secs := int(a.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	args := []string{"+nocmd", "+noall", "+comments", "+answer", "+time=" + strconv.Itoa(secs), "+tries=1"}
	if a.server != "" {
		host := a.server
		if h, _, err := net.SplitHostPort(a.server); err == nil {
			host = h
		}
		args = append(args, "@"+host)
	}
	args = append(args, q.Value, a.recordType)

	out, err := a.run(ctx, "dig", args...)
	if err != nil {
		return nil, err
	}
	return parseDigOutput(string(out), a.recordType)
}

func (a *Dig) Meaningful(p map[string]any) bool { return engine.Answered(p) }

// parseDigOutput reads the status from the header comment and the rdata of
// answer lines of recordType.
func parseDigOutput(out, recordType string) (map[string]any, error) {
	m := digStatusRegex.FindStringSubmatch(out)
	if m == nil {
		msg := strings.TrimSpace(out)
		if msg == "" {
			msg = "no response"
		}
		return nil, fmt.Errorf("dig: %s", firstLine(msg))
	}
	status := m[1]
	if status != "NOERROR" && status != "NXDOMAIN" {
		return nil, fmt.Errorf("dig: %s", status)
	}

	records := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		// owner TTL class type rdata...
		fields := strings.Fields(line)
		if len(fields) < 5 || !strings.EqualFold(fields[3], recordType) {
			continue
		}
		records = append(records, strings.Join(fields[4:], " "))
	}

	return map[string]any{"records": records, "rcode": status}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
