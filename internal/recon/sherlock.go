package recon

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/pkg/sites"
)

// Sherlock runs the sherlock CLI and scrapes its per-site report lines:
//
//	[+] GitHub: https://github.com/alice
//	[-] Reddit: Not Found!
type Sherlock struct {
	meta
	run         CommandRunner
	siteTimeout time.Duration
}

// NewSherlock returns the "sherlock" adapter. siteTimeout is passed to
// sherlock's own --timeout flag.
func NewSherlock(run CommandRunner, siteTimeout, timeout time.Duration) *Sherlock {
	return &Sherlock{meta: meta{"sherlock", timeout}, run: runner(run), siteTimeout: siteTimeout}
}

func (a *Sherlock) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	secs := max(1, int(a.siteTimeout.Seconds()))
	out, err := a.run(ctx, "sherlock", "--print-all", "--no-color", "--timeout", strconv.Itoa(secs), q.Value)
	if err != nil {
		return nil, err
	}
	results := parseSherlockOutput(out)
	if len(results) == 0 {
		return nil, fmt.Errorf("sherlock: no site results in output (%s)", firstLine(string(out)))
	}
	return usernamePayload(results), nil
}

func (a *Sherlock) Meaningful(p map[string]any) bool { return answeredSites(p) }

func parseSherlockOutput(out []byte) []sites.Result {
	var results []sites.Result
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		var exists bool
		switch {
		case strings.HasPrefix(line, "[+]"):
			exists = true
		case strings.HasPrefix(line, "[-]"):
		default:
			continue
		}

		name, rest, ok := strings.Cut(strings.TrimSpace(line[3:]), ":")
		if !ok || name == "" {
			continue
		}
		rest = strings.TrimSpace(rest)

		r := sites.Result{Site: strings.TrimSpace(name), Exists: exists}
		switch {
		case exists:
			r.URL = rest
		case strings.EqualFold(rest, "Not Found!"):
		default:
			r.Error = rest
		}
		results = append(results, r)
	}
	return results
}
