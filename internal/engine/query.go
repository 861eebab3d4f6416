package engine

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	domainRegex   = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9-]{2,63}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)
)

// ParseQuery validates raw input for the given kind and returns a normalized Query.
// Domains are lower-cased and IDNA-encoded; IPs are canonicalized.
func ParseQuery(kind Kind, raw string) (Query, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Query{}, &ValidationError{Field: string(kind), Err: ErrMissingValue}
	}

	switch kind {
	case KindDomain:
		d, err := NormalizeDomain(value)
		if err != nil {
			return Query{}, &ValidationError{Field: string(kind), Value: value, Err: err}
		}
		value = d
	case KindEmail:
		if !ValidEmail(value) {
			return Query{}, &ValidationError{Field: string(kind), Value: value, Err: ErrInvalidFormat}
		}
	case KindIP:
		addr, err := netip.ParseAddr(value)
		if err != nil || addr.Zone() != "" {
			return Query{}, &ValidationError{Field: string(kind), Value: value, Err: ErrInvalidFormat}
		}
		value = addr.Unmap().String()
	case KindUsername:
		if !usernameRegex.MatchString(value) {
			return Query{}, &ValidationError{Field: string(kind), Value: value, Err: ErrInvalidFormat}
		}
	default:
		return Query{}, fmt.Errorf("unknown query kind %q", kind)
	}

	return Query{Kind: kind, Value: value}, nil
}

// NormalizeDomain lower-cases, strips a trailing dot and IDNA-encodes a domain name.
func NormalizeDomain(s string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(ascii) > 253 || !domainRegex.MatchString(ascii) {
		return "", ErrInvalidFormat
	}
	return ascii, nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// EmailDomain returns the part after the last '@', or "" if there is none.
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}
