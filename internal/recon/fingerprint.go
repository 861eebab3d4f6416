package recon

import (
	_ "embed"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

//go:embed fingerprints.json
var fingerprintsJSON []byte

// Technology is a product detected from response headers.
type Technology struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// FingerprintRule defines a header or cookie pattern for technology detection.
type FingerprintRule struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Headers  []headerMatch `json:"headers,omitempty"`
	Cookies  []string      `json:"cookies,omitempty"`
}

type headerMatch struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	regex   *regexp.Regexp
}

var (
	fingerprintRules []FingerprintRule
	fingerprintOnce  sync.Once
)

// loadFingerprints parses the embedded rules once and panics on a bad rule file.
func loadFingerprints() {
	fingerprintOnce.Do(func() {
		rules, err := parseFingerprints(fingerprintsJSON)
		if err != nil {
			panic(fmt.Sprintf("recon: embedded fingerprints: %v", err))
		}
		fingerprintRules = rules
	})
}

func parseFingerprints(data []byte) ([]FingerprintRule, error) {
	var rules []FingerprintRule
	if err := sonic.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i := range rules {
		for j := range rules[i].Headers {
			h := &rules[i].Headers[j]
			if h.Pattern == "" {
				continue
			}
			re, err := regexp.Compile("(?i)" + h.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %s header %s: %w", rules[i].Name, h.Name, err)
			}
			h.regex = re
		}
	}
	return rules, nil
}

// Fingerprint returns the technologies matched by the response headers and cookies.
func Fingerprint(header http.Header) []Technology {
	loadFingerprints()

	var cookies []string
	for _, c := range (&http.Response{Header: header}).Cookies() {
		cookies = append(cookies, c.Name)
	}

	techs := []Technology{}
	for _, rule := range fingerprintRules {
		if matchesRule(rule, header, cookies) {
			techs = append(techs, Technology{Name: rule.Name, Category: rule.Category})
		}
	}
	return techs
}

func matchesRule(rule FingerprintRule, header http.Header, cookies []string) bool {
	for _, hm := range rule.Headers {
		val := header.Get(hm.Name)
		if val == "" {
			continue
		}
		if hm.regex != nil && hm.regex.MatchString(val) {
			return true
		}
		if hm.Pattern == "" {
			return true
		}
	}

	for _, name := range rule.Cookies {
		for _, c := range cookies {
			if strings.EqualFold(c, name) {
				return true
			}
		}
	}

	return false
}
