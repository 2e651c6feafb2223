package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

var zipPattern = regexp.MustCompile(`\b\d{5}\b`)

type procedureRule struct {
	keywords []string
	id       leads.ProcedureID
}

// procedureRules is evaluated in order; the first rule with a keyword hit wins.
var procedureRules = []procedureRule{
	{[]string{"all on 4", "all-on-4", "all on four"}, leads.ProcedureAllOn4},
	{[]string{"full mouth", "full arch"}, leads.ProcedureFullMouth},
	{[]string{"same day", "same-day", "immediate"}, leads.ProcedureSameDay},
	{[]string{"snap", "denture"}, leads.ProcedureImplantDentures},
	{[]string{"bone graft"}, leads.ProcedureBoneGraft},
	{[]string{"single", "one tooth"}, leads.ProcedureSingleTooth},
}

type urgencyRule struct {
	keywords []string
	urgency  leads.Urgency
}

var urgencyRules = []urgencyRule{
	{[]string{"asap", "as soon as", "right away", "immediately", "urgent", "emergency", "pain", "this week"}, leads.UrgencyASAP},
	{[]string{"month", "few weeks", "couple weeks", "soon"}, leads.UrgencyWithinMonth},
	{[]string{"research", "just looking", "browsing", "not sure", "exploring"}, leads.UrgencyResearching},
}

// KeywordProcedure is the deterministic procedure classifier. It is total:
// anything without a recognized keyword is not-sure.
func KeywordProcedure(utterance string) leads.ProcedureID {
	s := normalize(utterance)
	for _, rule := range procedureRules {
		if containsAny(s, rule.keywords) {
			return rule.id
		}
	}
	return leads.ProcedureNotSure
}

// KeywordLocation is the deterministic location classifier. It returns the
// area's conversational label, or DefaultLocation.
func KeywordLocation(utterance string) string {
	if a, ok := zipArea(utterance); ok {
		return a.Label
	}
	if a, ok := keywordArea(normalize(utterance)); ok {
		return a.Label
	}
	return DefaultLocation
}

// KeywordUrgency maps an utterance to an urgency, reporting false when no
// keyword is present so the caller can apply its channel default.
func KeywordUrgency(utterance string) (leads.Urgency, bool) {
	s := normalize(utterance)
	if u, ok := leads.ParseUrgency(s); ok {
		return u, true
	}
	for _, rule := range urgencyRules {
		if containsAny(s, rule.keywords) {
			return rule.urgency, true
		}
	}
	return "", false
}

func keywordArea(normalized string) (Area, bool) {
	if normalized == "" {
		return Area{}, false
	}
	for _, a := range areas {
		if containsAny(normalized, a.Keywords) {
			return a, true
		}
	}
	return Area{}, false
}

func zipArea(utterance string) (Area, bool) {
	for _, zip := range zipPattern.FindAllString(utterance, -1) {
		if a, ok := AreaForZip(zip); ok {
			return a, true
		}
	}
	return Area{}, false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// normalize folds compatibility characters, strips combining marks, maps all
// unicode spaces to ASCII space and lowercases.
func normalize(text string) string {
	text = norm.NFKD.String(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
