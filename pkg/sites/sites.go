// Package sites holds the catalog of sites checked for username existence.
package sites

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sites.yaml
var catalogYAML []byte

// Detection strategies.
const (
	ErrorStatusCode = "status_code"
	ErrorMessage    = "message"
)

// Site is one catalog entry. URL contains a {username} placeholder.
type Site struct {
	Name      string `yaml:"name" json:"name"`
	URL       string `yaml:"url" json:"url"`
	ErrorType string `yaml:"error_type" json:"error_type"`
	ErrorMsg  string `yaml:"error_msg,omitempty" json:"error_msg,omitempty"`
	Popular   bool   `yaml:"popular,omitempty" json:"popular,omitempty"`
}

// ProfileURL returns the site URL for username.
func (s Site) ProfileURL(username string) string {
	return strings.ReplaceAll(s.URL, "{username}", username)
}

var (
	once    sync.Once
	catalog []Site
	loadErr error
)

// All returns the catalog in file order. The slice is shared; callers must not modify it.
func All() []Site {
	once.Do(func() {
		catalog, loadErr = parse(catalogYAML)
	})
	if loadErr != nil {
		panic(fmt.Sprintf("sites: embedded catalog: %v", loadErr))
	}
	return catalog
}

// First returns at most n sites from the head of the catalog. n <= 0 means all.
func First(n int) []Site {
	all := All()
	if n <= 0 || n > len(all) {
		return all
	}
	return all[:n]
}

func parse(data []byte) ([]Site, error) {
	var out []Site
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for i, s := range out {
		if s.Name == "" || !strings.Contains(s.URL, "{username}") {
			return nil, fmt.Errorf("entry %d: name and url with {username} are required", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("entry %d: duplicate site %q", i, s.Name)
		}
		seen[s.Name] = true
		switch s.ErrorType {
		case ErrorStatusCode:
		case ErrorMessage:
			if s.ErrorMsg == "" {
				return nil, fmt.Errorf("site %s: error_msg required for message detection", s.Name)
			}
		default:
			return nil, fmt.Errorf("site %s: unknown error_type %q", s.Name, s.ErrorType)
		}
	}
	return out, nil
}

// Result is the outcome of checking one site for a username.
type Result struct {
	Site       string `json:"site"`
	URL        string `json:"url"`
	Exists     bool   `json:"exists"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SortResults orders existing profiles first, then by site name ascending.
func SortResults(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Exists != rs[j].Exists {
			return rs[i].Exists
		}
		return rs[i].Site < rs[j].Site
	})
}

// CountFound returns how many results exist.
func CountFound(rs []Result) int {
	n := 0
	for _, r := range rs {
		if r.Exists {
			n++
		}
	}
	return n
}
