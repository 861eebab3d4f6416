package synth

// Breaches synthesizes a breach check for email. Breached is seed mod 3 != 0;
// a breached address gets min(len(catalog), 1 + seed mod 3) distinct entries
// taken from one catalog permutation, the only draw.
func (g *Generator) Breaches(email string) map[string]any {
	seed := Seed(email)
	breached := seed%3 != 0

	entries := []map[string]any{}
	if breached {
		r := stream(email, streamBreaches)
		n := min(len(breachCatalog), 1+int(seed%3))
		for _, i := range r.Perm(len(breachCatalog))[:n] {
			b := breachCatalog[i]
			entries = append(entries, map[string]any{
				"name":         b.Name,
				"title":        b.Title,
				"domain":       b.Domain,
				"breach_date":  b.BreachDate,
				"pwn_count":    b.PwnCount,
				"data_classes": b.DataClasses,
			})
		}
	}

	return map[string]any{
		"breached": breached,
		"breaches": entries,
	}
}
