package synth

import "sort"

// DomainEmails synthesizes role-account addresses for domain.
// Draw order: count (2 + IntN(4)), then one permutation of the role list.
func (g *Generator) DomainEmails(domain string) map[string]any {
	r := stream(domain, streamEmails)

	n := 2 + r.IntN(4)
	emails := make([]string, 0, n)
	for _, i := range r.Perm(len(roleAccounts))[:n] {
		emails = append(emails, roleAccounts[i]+"@"+domain)
	}
	sort.Strings(emails)

	return map[string]any{"emails": emails}
}
