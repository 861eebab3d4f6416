package recon

import (
	"context"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// WhoisCLI is the subprocess tier: runs the system whois(1) and scrapes its output.
type WhoisCLI struct {
	meta
	run CommandRunner
}

// NewWhoisCLI returns the "whois-cli" adapter. A nil runner uses ExecRunner.
func NewWhoisCLI(run CommandRunner, timeout time.Duration) *WhoisCLI {
	return &WhoisCLI{meta: meta{"whois-cli", timeout}, run: runner(run)}
}

func (a *WhoisCLI) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	out, err := a.run(ctx, "whois", q.Value)
	if err != nil {
		return nil, err
	}
	return scrapeWHOIS(string(out), domainSchema), nil
}

func (a *WhoisCLI) Meaningful(p map[string]any) bool {
	return engine.Extracted("registrar", "creation_date", "expiration_date", "name_servers")(p)
}
