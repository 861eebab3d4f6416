package engine

import (
	"context"
	"reflect"
	"strings"
	"time"
)

// placeholders are values registries return instead of real data.
var placeholders = map[string]bool{
	"":                     true,
	"none":                 true,
	"null":                 true,
	"n/a":                  true,
	"unknown":              true,
	"redacted for privacy": true,
	"data redacted":        true,
	"not disclosed":        true,
}

// IsPlaceholder reports whether v carries no real information.
func IsPlaceholder(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return placeholders[strings.ToLower(strings.TrimSpace(t))]
	case []string:
		for _, s := range t {
			if !IsPlaceholder(s) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range t {
			if !IsPlaceholder(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !IsPlaceholder(e) {
				return false
			}
		}
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

// NonPlaceholder is the registry/resolver predicate: at least one of fields
// (or any field, when none are named) holds a real value.
func NonPlaceholder(fields ...string) func(map[string]any) bool {
	return func(p map[string]any) bool {
		if len(fields) == 0 {
			for _, v := range p {
				if !IsPlaceholder(v) {
					return true
				}
			}
			return false
		}
		for _, f := range fields {
			if !IsPlaceholder(p[f]) {
				return true
			}
		}
		return false
	}
}

// Extracted is the text-scrape predicate: at least one target field was pulled
// out of the raw text.
func Extracted(fields ...string) func(map[string]any) bool {
	return NonPlaceholder(fields...)
}

// Responded is the HTTP-probe predicate: any response at all, whatever its status.
func Responded(p map[string]any) bool {
	_, ok := p["status_code"]
	return ok
}

// Answered is the resolver predicate for record lookups: the resolver produced an
// authoritative answer, including an empty one (NXDOMAIN or no records of the type).
func Answered(p map[string]any) bool {
	rcode, _ := p["rcode"].(string)
	return rcode != ""
}

// Func is an Adapter built from plain functions.
type Func struct {
	Label   string
	Budget  time.Duration
	Fn      func(ctx context.Context, q Query) (map[string]any, error)
	Predict func(map[string]any) bool
}

func (f *Func) Name() string           { return f.Label }
func (f *Func) Timeout() time.Duration { return f.Budget }

func (f *Func) Attempt(ctx context.Context, q Query) (map[string]any, error) {
	return f.Fn(ctx, q)
}

func (f *Func) Meaningful(p map[string]any) bool {
	if f.Predict == nil {
		return NonPlaceholder()(p)
	}
	return f.Predict(p)
}
