package output

import (
	"fmt"
	"io"

	"github.com/vulnverified/iseeyou/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// WriteHeader prints the iseeyou banner.
func WriteHeader(w io.Writer, noColor bool) {
	if noColor {
		fmt.Fprintf(w, "iseeyou %s - OSINT lookups\n\n", Version)
	} else {
		fmt.Fprintf(w, "\033[1miseeyou %s\033[0m - OSINT lookups\n\n", Version)
	}
}

// WriteSummary prints where the data came from and how much to trust it.
func WriteSummary(w io.Writer, env engine.Envelope, noColor bool) {
	fmt.Fprintln(w)

	if msg, ok := env["error"].(string); ok {
		if noColor {
			fmt.Fprintf(w, "! %s\n", msg)
		} else {
			fmt.Fprintf(w, "\033[31m!\033[0m %s\n", msg)
		}
		if detail, ok := env["message"].(string); ok {
			fmt.Fprintf(w, "  %s\n", detail)
		}
		return
	}

	source := sourceOf(env)
	if noColor {
		fmt.Fprintf(w, "Source: %s\n", source)
	} else {
		fmt.Fprintf(w, "\033[1mSource:\033[0m %s\n", source)
	}

	if note, ok := env["note"].(string); ok {
		if noColor {
			fmt.Fprintf(w, "! %s\n", note)
		} else {
			fmt.Fprintf(w, "\033[33m!\033[0m %s\n", note)
		}
	}
	for _, warning := range engine.Strings(env["warnings"]) {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}

// sourceOf reads the envelope source. DNS envelopes only carry per-type
// sources when degraded.
func sourceOf(env engine.Envelope) string {
	if s, ok := env["source"].(string); ok {
		return s
	}
	if m, ok := env["sources"].(map[string]string); ok {
		out := ""
		for _, t := range sortedKeys(m) {
			if out != "" {
				out += ", "
			}
			out += t + "=" + m[t]
		}
		return out
	}
	return "live"
}
