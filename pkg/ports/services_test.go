package ports

import "testing"

func TestCatalog_Sorted(t *testing.T) {
	for i := 1; i < len(Catalog); i++ {
		if Catalog[i].Port <= Catalog[i-1].Port {
			t.Errorf("catalog not sorted: %d at index %d <= %d at index %d", Catalog[i].Port, i, Catalog[i-1].Port, i-1)
		}
	}
}

func TestCatalog_NoDuplicates(t *testing.T) {
	seen := make(map[int]bool)
	for _, s := range Catalog {
		if seen[s.Port] {
			t.Errorf("duplicate port: %d", s.Port)
		}
		seen[s.Port] = true
	}
}

func TestCatalog_ValidEntries(t *testing.T) {
	for _, s := range Catalog {
		if s.Port < 1 || s.Port > 65535 {
			t.Errorf("port %d out of range", s.Port)
		}
		if s.Name == "" || s.Product == "" || s.Version == "" {
			t.Errorf("port %d has empty fields: %+v", s.Port, s)
		}
		if s.Transport != "tcp" && s.Transport != "udp" {
			t.Errorf("port %d transport = %q", s.Port, s.Transport)
		}
	}
}

func TestCatalog_HasCommonPorts(t *testing.T) {
	for _, p := range []int{22, 80, 443, 3306, 5432, 8080, 8443} {
		if _, ok := Lookup(p); !ok {
			t.Errorf("missing common port: %d", p)
		}
	}
}

func TestName(t *testing.T) {
	if got := Name(22); got != "ssh" {
		t.Errorf("Name(22) = %q, want %q", got, "ssh")
	}
	if got := Name(1); got != "unknown" {
		t.Errorf("Name(1) = %q, want %q", got, "unknown")
	}
}
