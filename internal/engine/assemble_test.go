package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAssembler_Nested(t *testing.T) {
	a := Assembler{QueryField: "domain", PayloadField: "whois_data"}
	out := Outcome{
		Query:   testQuery,
		Payload: map[string]any{"registrar": "Example Registrar"},
		Source:  "whois",
		Tier:    1,
	}

	env, err := a.Assemble(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["domain"] != "example.com" {
		t.Errorf("domain = %v", env["domain"])
	}
	if env["source"] != "whois" {
		t.Errorf("source = %v", env["source"])
	}
	if _, ok := env["note"]; ok {
		t.Error("note should be absent for authoritative data")
	}
	if _, ok := env["warnings"]; ok {
		t.Error("warnings should be absent for tier 1")
	}
	data, ok := env["whois_data"].(map[string]any)
	if !ok || data["registrar"] != "Example Registrar" {
		t.Errorf("whois_data = %v", env["whois_data"])
	}
}

func TestAssembler_SyntheticFlattened(t *testing.T) {
	a := Assembler{QueryField: "email"}
	out := Outcome{
		Query:     Query{Kind: KindEmail, Value: "a@b.com"},
		Payload:   map[string]any{"breached": false, "breaches": []any{}, "email": "ignored"},
		Source:    SourceSynthetic,
		Synthetic: true,
		Warnings:  []string{"hibp: source not configured"},
	}

	env, err := a.Assemble(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["email"] != "a@b.com" {
		t.Errorf("email = %v, want query value", env["email"])
	}
	if env["breached"] != false {
		t.Errorf("breached = %v", env["breached"])
	}
	if env["note"] != DefaultSyntheticNote {
		t.Errorf("note = %v", env["note"])
	}
	if w, ok := env["warnings"].([]string); !ok || len(w) != 1 {
		t.Errorf("warnings = %v", env["warnings"])
	}
}

func TestAssembler_Exhausted(t *testing.T) {
	a := Assembler{QueryField: "ip", PayloadField: "geolocation"}
	out := Outcome{
		Query:    Query{Kind: KindIP, Value: "1.1.1.1"},
		Source:   SourceNone,
		Warnings: []string{"ip-api: timeout", "otx: 500"},
	}

	env, err := a.Assemble(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["error"] != "all sources failed" {
		t.Errorf("error = %v", env["error"])
	}
	if env["message"] != "ip-api: timeout; otx: 500" {
		t.Errorf("message = %v", env["message"])
	}
	if _, ok := env["geolocation"]; ok {
		t.Error("payload field should be absent on exhaustion")
	}
}

func TestAssembleRecords_FaultIsRecovered(t *testing.T) {
	_, err := AssembleRecords("example.com", []string{"A"}, map[string]Outcome{})
	if !errors.Is(err, ErrAssembly) {
		t.Fatalf("err = %v, want ErrAssembly", err)
	}
	var fault *AssemblyFault
	if !errors.As(err, &fault) {
		t.Fatalf("err = %v, want *AssemblyFault", err)
	}
}

func TestAssembleRecords_CleanEnvelope(t *testing.T) {
	outcomes := map[string]Outcome{
		"A": {Payload: map[string]any{"records": []string{"93.184.216.34"}, "rcode": "NOERROR"}, Source: "dns", Tier: 1},
	}

	env, err := AssembleRecords("example.com", []string{"A"}, outcomes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"dns_records":{"A":["93.184.216.34"]},"domain":"example.com"}`
	if string(b) != want {
		t.Errorf("envelope = %s, want %s", b, want)
	}
}

func TestAssembleRecords_Degraded(t *testing.T) {
	outcomes := map[string]Outcome{
		"A":  {Payload: map[string]any{"records": []string{"1.2.3.4"}, "rcode": "NOERROR"}, Source: "dns", Tier: 1},
		"MX": {Payload: map[string]any{"records": []string{"10 mail.example.com."}}, Source: SourceSynthetic, Synthetic: true, Warnings: []string{"dns: timeout"}},
	}

	env, err := AssembleRecords("example.com", []string{"A", "MX"}, outcomes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sources, ok := env["sources"].(map[string]string)
	if !ok {
		t.Fatalf("sources missing: %v", env)
	}
	if sources["MX"] != SourceSynthetic || sources["A"] != "dns" {
		t.Errorf("sources = %v", sources)
	}
	if w := env["warnings"].([]string); len(w) != 1 || w[0] != "MX dns: timeout" {
		t.Errorf("warnings = %v", w)
	}
	if env["note"] == nil {
		t.Error("note should be set when a record type was synthesized")
	}
}
