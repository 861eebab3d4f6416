package recon

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/pkg/ports"
)

// ConnectScan is the opt-in last live service-scan tier. It TCP-connects to
// the catalog ports of a single address and reports the ones that accept.
type ConnectScan struct {
	meta
	ports       []int
	concurrency int
	dialTimeout time.Duration
	enabled     bool
}

// NewConnectScan returns the "connect-scan" adapter over the TCP ports of
// pkg/ports. A disabled scan fails every attempt with engine.ErrNotConfigured.
func NewConnectScan(enabled bool, concurrency int, dialTimeout, timeout time.Duration) *ConnectScan {
	var tcp []int
	for _, s := range ports.Catalog {
		if s.Transport == "tcp" {
			tcp = append(tcp, s.Port)
		}
	}
	return &ConnectScan{
		meta:        meta{"connect-scan", timeout},
		ports:       tcp,
		concurrency: max(1, concurrency),
		dialTimeout: dialTimeout,
		enabled:     enabled,
	}
}

func (a *ConnectScan) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	if !a.enabled {
		return nil, engine.ErrNotConfigured
	}
	open := scanPorts(ctx, q.Value, a.ports, a.concurrency, a.dialTimeout)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	services := make([]map[string]any, 0, len(open))
	for _, p := range open {
		services = append(services, map[string]any{
			"port":      p,
			"transport": "tcp",
			"service":   ports.Name(p),
			"product":   "",
			"version":   "",
		})
	}
	return map[string]any{
		"ip":        q.Value,
		"ports":     open,
		"services":  services,
		"os":        "",
		"org":       "",
		"hostnames": []string{},
		"vulns":     []map[string]any{},
	}, nil
}

func (a *ConnectScan) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("ports")(p)
}

// scanPorts dials ip on each port with a fixed pool of workers and returns
// the open ports in ascending order. Closed and filtered ports are skipped.
func scanPorts(ctx context.Context, ip string, portList []int, concurrency int, timeout time.Duration) []int {
	work := make(chan int, len(portList))
	for _, p := range portList {
		work <- p
	}
	close(work)

	var (
		mu   sync.Mutex
		open = []int{}
		wg   sync.WaitGroup
	)
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dialer := net.Dialer{Timeout: timeout}

			for port := range work {
				if ctx.Err() != nil {
					return
				}
				conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
				if err != nil {
					continue
				}
				conn.Close()

				mu.Lock()
				open = append(open, port)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Ints(open)
	return open
}
