package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/internal/lookup"
	"github.com/vulnverified/iseeyou/internal/synth"
	"github.com/vulnverified/iseeyou/pkg/sites"
)

func TestParseRecordTypes(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"A", []string{"A"}, false},
		{"a, mx ,txt", []string{"A", "MX", "TXT"}, false},
		{"MX,mx,MX", []string{"MX"}, false},
		{"A,,CAA", []string{"A", "CAA"}, false},
		{"AXFR", nil, true},
		{" , ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRecordTypes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOperations(t *testing.T) {
	down := &engine.Func{
		Label:  "down",
		Budget: time.Second,
		Fn: func(ctx context.Context, q engine.Query) (map[string]any, error) {
			return nil, errors.New("unreachable")
		},
	}
	svc := &lookup.Service{
		Generator: synth.New(synth.DefaultParams()),
		Catalog:   sites.All(),
		DNSSources: func(string) ([]engine.Adapter, error) {
			return []engine.Adapter{down}, nil
		},
		WhoisSources:   []engine.Adapter{down},
		BreachSources:  []engine.Adapter{down},
		ServiceSources: []engine.Adapter{down},
	}

	tests := []struct {
		op, value, key string
	}{
		{"whois", "example.com", "whois_data"},
		{"breach", "alice@example.com", "breaches"},
		{"shodan", "8.8.8.8", "shodan_data"},
		{"dns", "example.com", "dns_records"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op, ok := operations[tt.op]
			if !ok {
				t.Fatalf("operation %q not registered", tt.op)
			}
			env, err := op(context.Background(), svc, tt.value, lookupArgs{recordTypes: []string{"A"}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := env[tt.key]; !ok {
				t.Errorf("%s missing from %v", tt.key, env)
			}
		})
	}

	if len(operationNames()) != 12 {
		t.Errorf("operations = %v, want 12", operationNames())
	}
}
