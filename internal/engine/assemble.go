package engine

import (
	"fmt"
	"strings"
)

// Envelope is the caller-facing response body.
type Envelope map[string]any

// DefaultSyntheticNote is attached to envelopes built from synthesized payloads.
const DefaultSyntheticNote = "Live sources were unavailable; this is deterministic synthetic data."

// Assembler turns an Outcome into an Envelope.
type Assembler struct {
	// QueryField names the key holding the query value (e.g. "domain").
	QueryField string
	// PayloadField nests the payload under this key; empty flattens it into the envelope.
	PayloadField string
	// Note overrides DefaultSyntheticNote.
	Note string
}

// Assemble builds the envelope for o. A panic while building is returned as an
// *AssemblyFault; every other outcome, including exhaustion, yields an envelope.
func (a Assembler) Assemble(o Outcome) (env Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = &AssemblyFault{Cause: fmt.Sprint(r)}
		}
	}()

	env = Envelope{a.QueryField: o.Query.Value}

	if o.Exhausted() {
		env["error"] = "all sources failed"
		env["message"] = exhaustedMessage(o.Warnings)
		if len(o.Warnings) > 0 {
			env["warnings"] = o.Warnings
		}
		return env, nil
	}

	if a.PayloadField == "" {
		for k, v := range o.Payload {
			if k == a.QueryField {
				continue
			}
			env[k] = v
		}
	} else {
		env[a.PayloadField] = o.Payload
	}

	env["source"] = o.Source
	if o.Synthetic {
		env["note"] = a.note()
	}
	if degraded(o) && len(o.Warnings) > 0 {
		env["warnings"] = o.Warnings
	}
	return env, nil
}

func (a Assembler) note() string {
	if a.Note != "" {
		return a.Note
	}
	return DefaultSyntheticNote
}

// AssembleRecords builds the DNS fan-out envelope. Per-type sources, warnings and a
// note are only included when at least one record type was degraded.
func AssembleRecords(domain string, types []string, outcomes map[string]Outcome) (env Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = &AssemblyFault{Cause: fmt.Sprint(r)}
		}
	}()

	records := make(map[string][]string, len(types))
	sources := make(map[string]string, len(types))
	var warnings []string
	anyDegraded, anySynthetic := false, false

	for _, t := range types {
		o, ok := outcomes[t]
		if !ok {
			panic(fmt.Sprintf("no outcome for record type %s", t))
		}
		records[t] = Strings(o.Payload["records"])
		sources[t] = o.Source
		if degraded(o) {
			anyDegraded = true
			for _, w := range o.Warnings {
				warnings = append(warnings, t+" "+w)
			}
		}
		if o.Synthetic {
			anySynthetic = true
		}
	}

	env = Envelope{"domain": domain, "dns_records": records}
	if anyDegraded {
		env["sources"] = sources
		if len(warnings) > 0 {
			env["warnings"] = warnings
		}
	}
	if anySynthetic {
		env["note"] = DefaultSyntheticNote
	}
	return env, nil
}

// Strings converts a payload value to a non-nil string slice.
func Strings(v any) []string {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return []string{}
		}
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	}
	return []string{}
}

func degraded(o Outcome) bool {
	return o.Synthetic || o.Tier > 1 || o.Exhausted()
}

func exhaustedMessage(warnings []string) string {
	if len(warnings) == 0 {
		return "no sources configured"
	}
	return strings.Join(warnings, "; ")
}
