package matching

import (
	"sort"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// Result caps per call site.
const (
	MaxLeadMatches              = 3
	MaxBrowseMatches            = 5
	MaxLocationProcedureMatches = 4

	// MinFilteredMatches is the smallest filtered set worth returning; below
	// it the filter is discarded in favor of the best of the whole catalog.
	MinFilteredMatches = 2
)

// Criteria is what a lead or a browse page asks for. Zero values mean "no
// signal" for that dimension.
type Criteria struct {
	Procedure leads.ProcedureID
	AreaSlug  string
}

// Match filters providers by procedure and area, falls back to the whole
// catalog when fewer than MinFilteredMatches survive, orders featured first
// then by rating, and truncates to max. providers is not modified. The
// returned bool reports whether the fallback was taken.
func Match(c Criteria, providers []catalog.Provider, max int) ([]catalog.Provider, bool) {
	if len(providers) == 0 || max <= 0 {
		return []catalog.Provider{}, false
	}

	filtered := filter(c, providers)
	fallback := false
	if len(filtered) < MinFilteredMatches {
		filtered = make([]catalog.Provider, len(providers))
		copy(filtered, providers)
		fallback = true
	}

	rank(filtered)
	if len(filtered) > max {
		filtered = filtered[:max]
	}
	return filtered, fallback
}

func filter(c Criteria, providers []catalog.Provider) []catalog.Provider {
	term := c.Procedure.MatchTerm()
	out := make([]catalog.Provider, 0, len(providers))
	for _, p := range providers {
		if term != "" && !p.OffersTerm(term) {
			continue
		}
		if c.AreaSlug != "" && !p.Serves(c.AreaSlug) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// rank orders featured providers first, then by rating descending. Ties keep
// catalog order.
func rank(ps []catalog.Provider) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Featured != ps[j].Featured {
			return ps[i].Featured
		}
		return ps[i].Rating > ps[j].Rating
	})
}
