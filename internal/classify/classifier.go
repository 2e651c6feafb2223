package classify

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/llm"
	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// Domain names a classification target.
type Domain string

const (
	DomainProcedure Domain = "procedure"
	DomainLocation  Domain = "location"
	DomainUrgency   Domain = "urgency"
)

const (
	pathModel   = "model"
	pathKeyword = "keyword"

	procedureMaxTokens = 20
	locationMaxTokens  = 15
	maxLocationWords   = 4
	maxLocationLength  = 40
)

const procedurePrompt = `You classify dental procedure intent from speech transcripts.
Return ONLY one of these exact IDs, nothing else:
single-tooth, all-on-4, implant-dentures, same-day, bone-graft, full-mouth, not-sure
If the caller is unsure or unclear, return: not-sure`

const locationPrompt = `Extract a Houston-area neighborhood or suburb from the caller's speech.
Common areas: Downtown Houston, Montrose, Medical Center, Heights, Midtown, River Oaks,
Galleria, Memorial, Katy, Sugar Land, The Woodlands, Clear Lake, Pearland, Cypress, Spring,
Missouri City, Pasadena, Baytown, League City, Humble, Richmond, Conroe, Friendswood, Bellaire.
Return the area name only (2-4 words max). If unclear, return: Houston`

// Options configures a Classifier.
type Options struct {
	// Client is the text model. Nil means keyword classification only.
	Client  llm.Client
	Model   string
	Timeout time.Duration
	Logger  *logging.Logger
	Metrics *metrics.PipelineMetrics
}

// Classifier maps free text to intents. The model is consulted once per
// call; any failure or unrecognized answer goes to the keyword scan, so every
// call returns a usable value.
type Classifier struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

// New creates a classifier.
func New(opts Options) *Classifier {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 4 * time.Second
	}
	return &Classifier{
		client:  opts.Client,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Procedure classifies the utterance into the procedure enumeration.
func (c *Classifier) Procedure(ctx context.Context, utterance string) leads.ProcedureID {
	if text, ok := c.ask(ctx, DomainProcedure, procedurePrompt, utterance, procedureMaxTokens); ok {
		if id, valid := leads.ParseProcedure(text); valid {
			c.metrics.ObserveClassification(string(DomainProcedure), pathModel)
			return id
		}
		c.logger.Warn("classifier: model answer outside procedure set", "answer", text)
	}
	c.metrics.ObserveClassification(string(DomainProcedure), pathKeyword)
	return KeywordProcedure(utterance)
}

// Location extracts a short area label from the utterance. A known zip code
// short-circuits the model. Model answers are canonicalized against the service-area table when they name a known area.
func (c *Classifier) Location(ctx context.Context, utterance string) string {
	if a, ok := zipArea(utterance); ok {
		c.metrics.ObserveClassification(string(DomainLocation), pathKeyword)
		return a.Label
	}
	if text, ok := c.ask(ctx, DomainLocation, locationPrompt, utterance, locationMaxTokens); ok {
		if label, valid := sanitizeLocation(text); valid {
			c.metrics.ObserveClassification(string(DomainLocation), pathModel)
			return label
		}
		c.logger.Warn("classifier: unusable location answer", "answer", text)
	}
	c.metrics.ObserveClassification(string(DomainLocation), pathKeyword)
	return KeywordLocation(utterance)
}

// Urgency is keyword-only; ok is false when nothing recognizable was said.
func (c *Classifier) Urgency(utterance string) (leads.Urgency, bool) {
	u, ok := KeywordUrgency(utterance)
	c.metrics.ObserveClassification(string(DomainUrgency), pathKeyword)
	return u, ok
}

// Classify dispatches on domain and returns the category as a string.
func (c *Classifier) Classify(ctx context.Context, domain Domain, utterance string) string {
	switch domain {
	case DomainProcedure:
		return string(c.Procedure(ctx, utterance))
	case DomainLocation:
		return c.Location(ctx, utterance)
	case DomainUrgency:
		u, _ := c.Urgency(utterance)
		return string(u)
	default:
		return ""
	}
}

// ask performs the single model attempt. ok is false when the model is not
// configured, the utterance is empty, or the call fails.
func (c *Classifier) ask(ctx context.Context, domain Domain, system, utterance string, maxTokens int32) (string, bool) {
	if c.client == nil || strings.TrimSpace(utterance) == "" {
		return "", false
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Complete(callCtx, llm.Request{
		Model:       c.model,
		System:      []string{system},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: utterance}},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("classifier: model call failed, using keywords", "domain", domain, "error", err)
		return "", false
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", false
	}
	return text, true
}

// sanitizeLocation keeps short area-like answers. A known area is returned
// with its canonical label; anything else must look like a place name.
func sanitizeLocation(answer string) (string, bool) {
	answer = strings.Trim(strings.TrimSpace(answer), `"'.`)
	if answer == "" || len(answer) > maxLocationLength {
		return "", false
	}
	if strings.EqualFold(answer, DefaultLocation) {
		return DefaultLocation, true
	}
	if a, ok := keywordArea(normalize(answer)); ok {
		return a.Label, true
	}
	words := strings.Fields(answer)
	if len(words) > maxLocationWords {
		return "", false
	}
	for _, r := range answer {
		if !(unicode.IsLetter(r) || r == ' ' || r == '-' || r == '/' || r == '\'') {
			return "", false
		}
	}
	return strings.Join(words, " "), true
}
