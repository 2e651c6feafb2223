package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// ErrEmptyCatalog is returned when a catalog has no providers to offer.
var ErrEmptyCatalog = errors.New("catalog: no providers")

// Provider is a listed dental-implant practice.
type Provider struct {
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Practice      string   `json:"practice"`
	Phone         string   `json:"phone"`
	TrackingPhone string   `json:"tracking_phone,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Procedures    []string `json:"procedures"`
	ServiceAreas  []string `json:"service_areas"`
	Featured      bool     `json:"featured"`
}

// ContactPhone is the number shown to patients: the tracking number when
// one is assigned, otherwise the practice phone.
func (p Provider) ContactPhone() string {
	if strings.TrimSpace(p.TrackingPhone) != "" {
		return p.TrackingPhone
	}
	return p.Phone
}

// OffersTerm reports whether any listed procedure contains term,
// case-insensitively.
func (p Provider) OffersTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, proc := range p.Procedures {
		if strings.Contains(strings.ToLower(proc), term) {
			return true
		}
	}
	return false
}

// Serves reports whether the provider lists the service-area slug.
func (p Provider) Serves(areaSlug string) bool {
	for _, a := range p.ServiceAreas {
		if strings.EqualFold(a, areaSlug) {
			return true
		}
	}
	return false
}

// Summary is the public view of the provider.
func (p Provider) Summary() leads.ProviderSummary {
	return leads.ProviderSummary{
		Slug:     p.Slug,
		Name:     p.Name,
		Practice: p.Practice,
		Phone:    p.ContactPhone(),
		Rating:   p.Rating,
	}
}

// Summaries maps providers to their public view. The result is never nil.
func Summaries(ps []Provider) []leads.ProviderSummary {
	out := make([]leads.ProviderSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Summary())
	}
	return out
}

// Source is a read-only provider catalog. Returned slices belong to the
// caller.
type Source interface {
	Providers(ctx context.Context) ([]Provider, error)
}

func validate(ps []Provider) error {
	if len(ps) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(ps))
	for i, p := range ps {
		if strings.TrimSpace(p.Slug) == "" {
			return fmt.Errorf("catalog: provider %d has no slug", i)
		}
		if _, dup := seen[p.Slug]; dup {
			return fmt.Errorf("catalog: duplicate slug %q", p.Slug)
		}
		seen[p.Slug] = struct{}{}
	}
	return nil
}

func clone(ps []Provider) []Provider {
	out := make([]Provider, len(ps))
	copy(out, ps)
	return out
}
