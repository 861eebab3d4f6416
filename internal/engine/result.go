// Package engine resolves OSINT queries through ordered fallback chains of sources.
package engine

import (
	"context"
	"time"
)

// Kind identifies what a query value names.
type Kind string

const (
	KindDomain   Kind = "domain"
	KindEmail    Kind = "email"
	KindIP       Kind = "ip"
	KindUsername Kind = "username"
)

// Query is a validated lookup target. Build it with ParseQuery.
type Query struct {
	Kind  Kind
	Value string
}

// SourceResult is the record of one adapter invocation within a chain.
type SourceResult struct {
	Tier       int            `json:"tier"`
	Source     string         `json:"source"`
	Payload    map[string]any `json:"payload,omitempty"`
	Meaningful bool           `json:"meaningful"`
	Error      string         `json:"error,omitempty"`
	Elapsed    time.Duration  `json:"elapsed"`
}

// Outcome is the terminal value of resolving one query through one chain.
type Outcome struct {
	Query     Query
	Payload   map[string]any
	Source    string
	Tier      int
	Synthetic bool
	Attempts  []SourceResult
	Warnings  []string
}

// Exhausted reports whether no tier produced a payload and nothing was synthesized.
func (o Outcome) Exhausted() bool {
	return o.Payload == nil
}

// Sources tagging non-adapter outcomes.
const (
	SourceSynthetic = "synthetic"
	SourceNone      = "none"
)

// Adapter wraps one external capability behind a timeout and a meaningful-result predicate.
// Attempt may return an error for any failure; the chain captures it.
type Adapter interface {
	Name() string
	Timeout() time.Duration
	Attempt(ctx context.Context, q Query) (map[string]any, error)
	Meaningful(payload map[string]any) bool
}

// Synthesizer produces a deterministic placeholder payload for a query.
type Synthesizer interface {
	Synthesize(q Query) map[string]any
}

// SynthFunc adapts a function to Synthesizer.
type SynthFunc func(q Query) map[string]any

// Synthesize implements Synthesizer.
func (f SynthFunc) Synthesize(q Query) map[string]any { return f(q) }

// Reporter is notified as a chain walks its tiers.
type Reporter interface {
	Attempt(chain string, tier int, source string)
	Warn(msg string)
}

// DetailReporter is an optional Reporter extension that also receives one
// line per finished tier with its elapsed time.
type DetailReporter interface {
	Detail(msg string)
}
