package matching

import (
	"fmt"
	"testing"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

func fixture() []catalog.Provider {
	return []catalog.Provider{
		{Slug: "katy-a", Rating: 4.6, Procedures: []string{"All-on-4 Dental Implants", "Bone Grafting"}, ServiceAreas: []string{"katy"}},
		{Slug: "katy-b", Rating: 4.9, Procedures: []string{"all on 4", "Single Tooth Implants"}, ServiceAreas: []string{"katy", "cypress"}},
		{Slug: "katy-c", Rating: 4.2, Procedures: []string{"Single Tooth Implants"}, ServiceAreas: []string{"katy"}, Featured: true},
		{Slug: "med-a", Rating: 5.0, Procedures: []string{"Full Mouth Reconstruction"}, ServiceAreas: []string{"medical-center"}},
		{Slug: "sl-a", Rating: 4.8, Procedures: []string{"All-on-4 Dental Implants"}, ServiceAreas: []string{"sugar-land"}, Featured: true},
	}
}

func slugs(ps []catalog.Provider) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Slug
	}
	return out
}

func TestMatchFiltersByProcedureAndArea(t *testing.T) {
	got, fallback := Match(Criteria{Procedure: leads.ProcedureAllOn4, AreaSlug: "katy"}, fixture(), MaxLeadMatches)
	if fallback {
		t.Fatal("filter had two matches, fallback not expected")
	}
	if fmt.Sprint(slugs(got)) != "[katy-b katy-a]" {
		t.Fatalf("unexpected match order: %v", slugs(got))
	}
}

func TestMatchProcedureOnly(t *testing.T) {
	got, _ := Match(Criteria{Procedure: leads.ProcedureAllOn4}, fixture(), MaxBrowseMatches)
	// featured first, then rating
	if fmt.Sprint(slugs(got)) != "[sl-a katy-b katy-a]" {
		t.Fatalf("unexpected match order: %v", slugs(got))
	}
}

func TestMatchFallsBackWhenTooFew(t *testing.T) {
	got, fallback := Match(Criteria{Procedure: leads.ProcedureFullMouth, AreaSlug: "pearland"}, fixture(), MaxLeadMatches)
	if !fallback {
		t.Fatal("expected fallback")
	}
	if len(got) != MaxLeadMatches {
		t.Fatalf("expected %d matches, got %d", MaxLeadMatches, len(got))
	}
	if fmt.Sprint(slugs(got)) != "[sl-a katy-c med-a]" {
		t.Fatalf("unexpected fallback order: %v", slugs(got))
	}
}

func TestMatchSingleFilteredResultStillFallsBack(t *testing.T) {
	got, fallback := Match(Criteria{Procedure: leads.ProcedureFullMouth}, fixture(), MaxLeadMatches)
	if !fallback || len(got) != 3 {
		t.Fatalf("one filtered provider is not enough: fallback=%v got=%v", fallback, slugs(got))
	}
}

func TestMatchNoSignalUsesWholeCatalog(t *testing.T) {
	got, _ := Match(Criteria{Procedure: leads.ProcedureNotSure}, fixture(), MaxLocationProcedureMatches)
	if len(got) != 4 {
		t.Fatalf("expected 4, got %d", len(got))
	}
}

func TestMatchSmallCatalog(t *testing.T) {
	one := fixture()[:1]
	got, _ := Match(Criteria{Procedure: leads.ProcedureBoneGraft, AreaSlug: "nowhere"}, one, MaxLeadMatches)
	if len(got) != 1 {
		t.Fatalf("expected the only provider, got %v", slugs(got))
	}
}

func TestMatchDoesNotMutateCatalog(t *testing.T) {
	ps := fixture()
	before := fmt.Sprint(slugs(ps))
	Match(Criteria{}, ps, MaxBrowseMatches)
	if after := fmt.Sprint(slugs(ps)); after != before {
		t.Fatalf("catalog order changed: %s -> %s", before, after)
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	c := Criteria{Procedure: leads.ProcedureSingleTooth, AreaSlug: "katy"}
	first, _ := Match(c, fixture(), MaxLeadMatches)
	second, _ := Match(c, fixture(), MaxLeadMatches)
	if fmt.Sprint(slugs(first)) != fmt.Sprint(slugs(second)) {
		t.Fatal("match must be deterministic")
	}
}

func TestMatchNonEmptyAndBounded(t *testing.T) {
	ps := fixture()
	for _, proc := range append(leads.Procedures(), "") {
		for _, area := range []string{"", "katy", "pearland", "medical-center"} {
			for max := 1; max <= 6; max++ {
				got, _ := Match(Criteria{Procedure: proc, AreaSlug: area}, ps, max)
				if len(got) == 0 || len(got) > max {
					t.Errorf("proc=%s area=%s max=%d: got %d", proc, area, max, len(got))
				}
			}
		}
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	got, _ := Match(Criteria{}, nil, MaxLeadMatches)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
