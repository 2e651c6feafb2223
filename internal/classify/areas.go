package classify

import "strings"

// Area is a Houston-area service area. Keywords are matched as substrings of
// the normalized utterance; Slug is empty for labels that have no provider
// service-area page.
type Area struct {
	Slug     string
	Name     string
	Label    string
	Keywords []string
	Zips     []string
}

// DefaultLocation is returned when no area can be recognized.
const DefaultLocation = "Houston"

// areas is evaluated top to bottom; the first keyword hit wins.
var areas = []Area{
	{Slug: "katy", Name: "Katy", Label: "Katy", Keywords: []string{"katy"}, Zips: []string{"77449", "77450", "77493", "77494"}},
	{Slug: "sugar-land", Name: "Sugar Land", Label: "Sugar Land", Keywords: []string{"sugar land", "sugarland"}, Zips: []string{"77478", "77479", "77498"}},
	{Slug: "the-woodlands", Name: "The Woodlands", Label: "The Woodlands", Keywords: []string{"woodlands", "wood lands", "the woodlands"}, Zips: []string{"77380", "77381", "77382", "77384", "77385", "77386"}},
	{Slug: "pearland", Name: "Pearland", Label: "Pearland", Keywords: []string{"pearland"}, Zips: []string{"77581", "77584", "77588"}},
	{Slug: "cypress", Name: "Cypress", Label: "Cypress", Keywords: []string{"cypress"}, Zips: []string{"77429", "77433"}},
	{Slug: "spring", Name: "Spring", Label: "Spring", Keywords: []string{"spring"}, Zips: []string{"77373", "77379", "77388", "77389"}},
	{Slug: "clear-lake", Name: "Clear Lake", Label: "Clear Lake", Keywords: []string{"clear lake", "clearlake"}, Zips: []string{"77058", "77059", "77062", "77573"}},
	{Slug: "league-city", Name: "League City", Label: "League City", Keywords: []string{"league city", "leaguecity"}, Zips: []string{"77573", "77574"}},
	{Slug: "pasadena", Name: "Pasadena", Label: "Pasadena", Keywords: []string{"pasadena"}, Zips: []string{"77502", "77503", "77504", "77505", "77506"}},
	{Slug: "baytown", Name: "Baytown", Label: "Baytown", Keywords: []string{"baytown"}, Zips: []string{"77520", "77521", "77523"}},
	{Slug: "humble", Name: "Humble", Label: "Humble", Keywords: []string{"humble"}, Zips: []string{"77338", "77346", "77396"}},
	{Slug: "missouri-city", Name: "Missouri City", Label: "Missouri City", Keywords: []string{"missouri city"}, Zips: []string{"77459", "77489"}},
	{Slug: "richmond", Name: "Richmond", Label: "Richmond", Keywords: []string{"richmond"}, Zips: []string{"77406", "77407", "77469"}},
	{Slug: "conroe", Name: "Conroe", Label: "Conroe", Keywords: []string{"conroe"}, Zips: []string{"77301", "77302", "77303", "77304", "77384"}},
	{Slug: "friendswood", Name: "Friendswood", Label: "Friendswood", Keywords: []string{"friendswood"}, Zips: []string{"77546"}},
	{Slug: "heights", Name: "Houston Heights", Label: "Heights", Keywords: []string{"heights"}, Zips: []string{"77008", "77009"}},
	{Slug: "montrose", Name: "Montrose", Label: "Montrose", Keywords: []string{"montrose"}, Zips: []string{"77006", "77019"}},
	{Slug: "midtown", Name: "Midtown", Label: "Midtown", Keywords: []string{"midtown"}, Zips: []string{"77004", "77002"}},
	{Name: "Downtown Houston", Label: "Downtown Houston", Keywords: []string{"downtown"}},
	{Slug: "medical-center", Name: "Texas Medical Center", Label: "Medical Center", Keywords: []string{"medical center", "med center"}, Zips: []string{"77030", "77054"}},
	{Slug: "river-oaks", Name: "River Oaks", Label: "River Oaks", Keywords: []string{"river oaks"}, Zips: []string{"77019", "77027"}},
	{Slug: "galleria", Name: "Galleria / Uptown", Label: "Galleria", Keywords: []string{"galleria", "uptown"}, Zips: []string{"77056", "77057"}},
	{Slug: "memorial", Name: "Memorial", Label: "Memorial", Keywords: []string{"memorial"}, Zips: []string{"77024", "77079"}},
	{Slug: "bellaire", Name: "Bellaire", Label: "Bellaire", Keywords: []string{"bellaire"}, Zips: []string{"77401"}},
	{Slug: "west-university", Name: "West University Place", Label: "West University", Keywords: []string{"west university", "west u"}, Zips: []string{"77005"}},
	{Slug: "tomball", Name: "Tomball", Label: "Tomball", Keywords: []string{"tomball"}, Zips: []string{"77375", "77377"}},
}

// Areas returns a copy of the service-area table in keyword priority order.
func Areas() []Area {
	out := make([]Area, len(areas))
	copy(out, areas)
	return out
}

// AreaBySlug looks up an area by its slug.
func AreaBySlug(slug string) (Area, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return Area{}, false
	}
	for _, a := range areas {
		if a.Slug == slug {
			return a, true
		}
	}
	return Area{}, false
}

// SlugFor resolves a free-text location label ("Sugar Land", "the woodlands",
// "katy") to a service-area slug. It returns "" when the label carries no
// geography signal, including the city-level default.
func SlugFor(label string) string {
	s := normalize(label)
	if s == "" || s == strings.ToLower(DefaultLocation) {
		return ""
	}
	for _, a := range areas {
		if a.Slug == s || strings.ToLower(a.Label) == s || strings.ToLower(a.Name) == s {
			return a.Slug
		}
	}
	if a, ok := keywordArea(s); ok {
		return a.Slug
	}
	return ""
}

// AreaForZip returns the first area (in table order) that lists the zip.
func AreaForZip(zip string) (Area, bool) {
	zip = strings.TrimSpace(zip)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	for _, a := range areas {
		for _, z := range a.Zips {
			if z == zip {
				return a, true
			}
		}
	}
	return Area{}, false
}
