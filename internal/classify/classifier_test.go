package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/llm"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

type stubClient struct {
	text  string
	err   error
	calls int
	last  llm.Request
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.calls++
	s.last = req
	return llm.Response{Text: s.text}, s.err
}

func newClassifier(client llm.Client) *Classifier {
	return New(Options{Client: client, Logger: logging.Discard()})
}

func TestKeywordProcedure(t *testing.T) {
	cases := []struct {
		in   string
		want leads.ProcedureID
	}{
		{"I think I want the All-on-4, I'm in Katy", leads.ProcedureAllOn4},
		{"all on four please", leads.ProcedureAllOn4},
		{"I need a full arch", leads.ProcedureFullMouth},
		{"I want a same day implant", leads.ProcedureSameDay},
		{"something immediate", leads.ProcedureSameDay},
		{"snap in dentures", leads.ProcedureImplantDentures},
		{"do I need a bone graft", leads.ProcedureBoneGraft},
		{"just one tooth", leads.ProcedureSingleTooth},
		{"a SINGLE implant", leads.ProcedureSingleTooth},
		{"", leads.ProcedureNotSure},
		{"¯\\_(ツ)_/¯", leads.ProcedureNotSure},
		// priority: all-on-4 beats denture
		{"all on 4 or dentures", leads.ProcedureAllOn4},
		// priority: full mouth beats single
		{"full mouth, not a single tooth", leads.ProcedureFullMouth},
	}
	for _, tc := range cases {
		if got := KeywordProcedure(tc.in); got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestKeywordProcedureIsDeterministic(t *testing.T) {
	in := "maybe same day dentures?"
	first := KeywordProcedure(in)
	for i := 0; i < 50; i++ {
		if got := KeywordProcedure(in); got != first {
			t.Fatalf("run %d: expected %s, got %s", i, first, got)
		}
	}
}

func TestKeywordLocation(t *testing.T) {
	cases := map[string]string{
		"I'm in Katy":                 "Katy",
		"out in sugarland":            "Sugar Land",
		"The Woodlands area":          "The Woodlands",
		"near the med center":         "Medical Center",
		"uptown by the galleria":      "Galleria",
		"downtown":                    "Downtown Houston",
		"west u":                      "West University",
		"somewhere on the moon":       DefaultLocation,
		"":                            DefaultLocation,
		"Ｋａｔｙ":                        "Katy",
		"I live in Tomball near 2920": "Tomball",
	}
	for in, want := range cases {
		if got := KeywordLocation(in); got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestKeywordUrgency(t *testing.T) {
	cases := map[string]leads.Urgency{
		"as soon as possible":      leads.UrgencyASAP,
		"I'm in pain":              leads.UrgencyASAP,
		"within the next month":    leads.UrgencyWithinMonth,
		"month":                    leads.UrgencyWithinMonth,
		"just researching for now": leads.UrgencyResearching,
	}
	for in, want := range cases {
		got, ok := KeywordUrgency(in)
		if !ok || got != want {
			t.Errorf("%q: expected %s, got %s (%v)", in, want, got, ok)
		}
	}
	if _, ok := KeywordUrgency("blue"); ok {
		t.Error("expected no urgency signal")
	}
}

func TestProcedureWithoutClientSkipsModel(t *testing.T) {
	c := newClassifier(nil)
	if got := c.Procedure(context.Background(), "I want a same day implant"); got != leads.ProcedureSameDay {
		t.Fatalf("expected same-day, got %s", got)
	}
}

func TestProcedureUsesValidModelAnswer(t *testing.T) {
	stub := &stubClient{text: " bone-graft\n"}
	c := newClassifier(stub)
	if got := c.Procedure(context.Background(), "my dentist said my jaw is too thin"); got != leads.ProcedureBoneGraft {
		t.Fatalf("expected bone-graft, got %s", got)
	}
	if stub.last.Temperature != 0 || stub.last.MaxTokens != procedureMaxTokens {
		t.Errorf("unexpected request parameters: %+v", stub.last)
	}
	if !strings.Contains(stub.last.System[0], "not-sure") {
		t.Errorf("prompt must enumerate ids")
	}
}

func TestProcedureRejectsGarbageModelAnswer(t *testing.T) {
	stub := &stubClient{text: "The patient wants veneers"}
	c := newClassifier(stub)
	if got := c.Procedure(context.Background(), "snap on dentures"); got != leads.ProcedureImplantDentures {
		t.Fatalf("expected keyword fallback, got %s", got)
	}
}

func TestProcedureModelFailureFallsBackWithoutRetry(t *testing.T) {
	stub := &stubClient{err: errors.New("timeout")}
	c := newClassifier(stub)
	if got := c.Procedure(context.Background(), "full mouth"); got != leads.ProcedureFullMouth {
		t.Fatalf("expected full-mouth, got %s", got)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one model attempt, got %d", stub.calls)
	}
}

func TestProcedureNotConfiguredClient(t *testing.T) {
	c := newClassifier(llm.Unconfigured{})
	if got := c.Procedure(context.Background(), "gibberish"); got != leads.ProcedureNotSure {
		t.Fatalf("expected not-sure, got %s", got)
	}
}

func TestProcedureEmptyUtteranceSkipsModel(t *testing.T) {
	stub := &stubClient{text: "all-on-4"}
	c := newClassifier(stub)
	if got := c.Procedure(context.Background(), "   "); got != leads.ProcedureNotSure {
		t.Fatalf("expected not-sure, got %s", got)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no model call, got %d", stub.calls)
	}
}

func TestProcedureTotality(t *testing.T) {
	valid := map[leads.ProcedureID]bool{}
	for _, id := range leads.Procedures() {
		valid[id] = true
	}
	answers := []string{"", "null", "ALL-ON-4", "{\"id\":\"x\"}", "single-tooth extra"}
	inputs := []string{"", "x", "all on 4", "\x00\xff", strings.Repeat("a", 5000)}
	for _, ans := range answers {
		c := newClassifier(&stubClient{text: ans})
		for _, in := range inputs {
			if got := c.Procedure(context.Background(), in); !valid[got] {
				t.Errorf("answer %q input %q: %q outside enumeration", ans, in, got)
			}
		}
	}
}

func TestLocationCanonicalizesModelAnswer(t *testing.T) {
	c := newClassifier(&stubClient{text: "sugarland."})
	if got := c.Location(context.Background(), "I'm near first colony"); got != "Sugar Land" {
		t.Fatalf("expected Sugar Land, got %q", got)
	}
}

func TestLocationKeepsShortUnknownArea(t *testing.T) {
	c := newClassifier(&stubClient{text: "Kingwood"})
	if got := c.Location(context.Background(), "kingwood"); got != "Kingwood" {
		t.Fatalf("expected Kingwood, got %q", got)
	}
}

func TestLocationRejectsRamblingAnswer(t *testing.T) {
	c := newClassifier(&stubClient{text: "I'm sorry, I could not determine the location from that."})
	if got := c.Location(context.Background(), "I'm in Pearland"); got != "Pearland" {
		t.Fatalf("expected keyword fallback Pearland, got %q", got)
	}
}

func TestLocationZipSkipsModel(t *testing.T) {
	stub := &stubClient{text: "Downtown Houston"}
	c := newClassifier(stub)
	if got := c.Location(context.Background(), "my zip is 77479"); got != "Sugar Land" {
		t.Fatalf("expected Sugar Land, got %q", got)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no model call, got %d", stub.calls)
	}
	if got := KeywordLocation("zip 10001 in katy"); got != "Katy" {
		t.Fatalf("unknown zip should fall through to keywords, got %q", got)
	}
}

func TestLocationWithoutClient(t *testing.T) {
	c := newClassifier(nil)
	if got := c.Location(context.Background(), "I'm in Katy"); got != "Katy" {
		t.Fatalf("expected Katy, got %q", got)
	}
	if got := c.Classify(context.Background(), DomainLocation, "nowhere"); got != DefaultLocation {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestClassifyDispatch(t *testing.T) {
	c := newClassifier(nil)
	if got := c.Classify(context.Background(), DomainProcedure, "all on 4"); got != "all-on-4" {
		t.Errorf("unexpected procedure %q", got)
	}
	if got := c.Classify(context.Background(), DomainUrgency, "asap"); got != "asap" {
		t.Errorf("unexpected urgency %q", got)
	}
	if got := c.Classify(context.Background(), Domain("color"), "red"); got != "" {
		t.Errorf("unknown domain should classify to empty, got %q", got)
	}
}
