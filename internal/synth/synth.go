// Package synth generates deterministic placeholder payloads for queries whose
// live sources all failed.
//
// Every schema seeds a PCG generator (math/rand/v2) with Seed(value) and a
// schema-specific stream constant, then draws values in the order documented on
// the schema's method. The same value therefore always yields the same payload
// from the same build. Only the WHOIS creation and expiry dates depend on Now.
package synth

import (
	"math/rand/v2"
	"time"
)

// PCG stream selectors, one per schema, so that two schemas fed the same
// value draw independent sequences.
const (
	streamWHOIS    uint64 = 0x77686f6973
	streamDNS      uint64 = 0x646e73
	streamUsername uint64 = 0x7573657273
	streamServices uint64 = 0x73686f64616e
	streamBreaches uint64 = 0x6869627
	streamEmails   uint64 = 0x656d61696c73
)

// Params holds the tunable thresholds of the generator.
type Params struct {
	BaseProbMin   float64 `mapstructure:"base_prob_min"`
	BaseProbMax   float64 `mapstructure:"base_prob_max"`
	PopularBoost  float64 `mapstructure:"popular_boost"`
	PopularCap    float64 `mapstructure:"popular_cap"`
	PopularMinLen int     `mapstructure:"popular_min_len"`
	PopularMaxLen int     `mapstructure:"popular_max_len"`
	MinPorts      int     `mapstructure:"min_ports"`
	MaxPorts      int     `mapstructure:"max_ports"`
	PatchJitter   float64 `mapstructure:"patch_jitter"`
	VulnChance    float64 `mapstructure:"vuln_chance"`
	MaxVulns      int     `mapstructure:"max_vulns"`
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		BaseProbMin:   0.2,
		BaseProbMax:   0.6,
		PopularBoost:  0.3,
		PopularCap:    0.95,
		PopularMinLen: 4,
		PopularMaxLen: 10,
		MinPorts:      2,
		MaxPorts:      8,
		PatchJitter:   0.3,
		VulnChance:    0.4,
		MaxVulns:      3,
	}
}

// Generator produces synthetic payloads. The zero value is not usable; call New.
type Generator struct {
	Now    func() time.Time
	Params Params
}

// New returns a Generator using the wall clock.
func New(p Params) *Generator {
	return &Generator{Now: time.Now, Params: p}
}

// Seed returns the sum of the Unicode code points of s.
func Seed(s string) uint64 {
	var sum uint64
	for _, r := range s {
		sum += uint64(r)
	}
	return sum
}

func stream(value string, schema uint64) *rand.Rand {
	return rand.New(rand.NewPCG(Seed(value), schema))
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}
