package engine

import (
	"context"
	"fmt"
	"time"
)

// Chain resolves a query by trying its adapters strictly in order.
// The first meaningful result wins; if none is meaningful, Synth (when set)
// produces the payload and the outcome is tagged synthetic.
type Chain struct {
	Name     string
	Adapters []Adapter
	Synth    Synthesizer
	Reporter Reporter
}

// Resolve walks the tiers and returns exactly one Outcome. It never fails:
// adapter errors become warnings.
func (c *Chain) Resolve(ctx context.Context, q Query) Outcome {
	out := Outcome{Query: q}

	for i, a := range c.Adapters {
		tier := i + 1
		if c.Reporter != nil {
			c.Reporter.Attempt(c.Name, tier, a.Name())
		}

		res := attempt(ctx, tier, a, q)
		out.Attempts = append(out.Attempts, res)
		if d, ok := c.Reporter.(DetailReporter); ok {
			d.Detail(describe(res))
		}

		if res.Meaningful {
			out.Payload = res.Payload
			out.Source = res.Source
			out.Tier = tier
			return out
		}

		reason := res.Error
		if reason == "" {
			reason = "no meaningful data"
		}
		warning := fmt.Sprintf("%s: %s", a.Name(), reason)
		out.Warnings = append(out.Warnings, warning)
		if c.Reporter != nil {
			c.Reporter.Warn(fmt.Sprintf("%s %s", c.Name, warning))
		}
	}

	if c.Synth == nil {
		out.Source = SourceNone
		return out
	}

	out.Payload = c.Synth.Synthesize(q)
	out.Source = SourceSynthetic
	out.Synthetic = true
	return out
}

// describe renders a finished tier, e.g. "hackertarget: meaningful in 120ms".
func describe(res SourceResult) string {
	status := "meaningful"
	switch {
	case res.Error != "":
		status = "failed"
	case !res.Meaningful:
		status = "empty"
	}
	return fmt.Sprintf("%s: %s in %s", res.Source, status, res.Elapsed.Round(time.Millisecond))
}

// attempt runs one adapter under its own timeout and converts every failure,
// including panics, into a non-meaningful SourceResult.
func attempt(ctx context.Context, tier int, a Adapter, q Query) (res SourceResult) {
	res = SourceResult{Tier: tier, Source: a.Name()}
	start := time.Now()

	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Payload = nil
			res.Meaningful = false
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	actx := ctx
	if t := a.Timeout(); t > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	payload, err := a.Attempt(actx, q)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Payload = payload
	res.Meaningful = payload != nil && a.Meaningful(payload)
	return res
}
