package voice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/htx-dental-leads/internal/dialogue"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

var voiceTracer = otel.Tracer("htx.internal.voice")

// GatherPath is where speech results are posted back.
const GatherPath = "/api/voice/gather"

// Handler serves the phone line. Conversation state travels in the gather
// callback URL, so any instance can answer any turn.
type Handler struct {
	machine     *dialogue.Machine
	script      dialogue.VoiceScript
	distributor leads.Distributor
	authToken   string
	publicBase  string
	timeout     time.Duration
	logger      *logging.Logger

	inflight sync.WaitGroup
}

// Config holds the optional knobs of the phone line.
type Config struct {
	// AuthToken enables Twilio signature checks when set.
	AuthToken string
	// PublicBaseURL is the externally visible origin Twilio calls.
	PublicBaseURL string
	// DispatchTimeout bounds a background lead distribution.
	DispatchTimeout time.Duration
}

// NewHandler creates the voice handler. The machine must run the voice flow
// with a VoiceScript.
func NewHandler(machine *dialogue.Machine, distributor leads.Distributor, cfg Config, logger *logging.Logger) *Handler {
	if machine == nil {
		panic("voice: dialogue machine required")
	}
	if distributor == nil {
		panic("voice: distributor required")
	}
	script, ok := machine.Script().(dialogue.VoiceScript)
	if !ok {
		panic("voice: machine must use a VoiceScript")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 30 * time.Second
	}
	return &Handler{
		machine:     machine,
		script:      script,
		distributor: distributor,
		authToken:   cfg.AuthToken,
		publicBase:  cfg.PublicBaseURL,
		timeout:     cfg.DispatchTimeout,
		logger:      logger,
	}
}

// Greeting handles GET|POST /api/voice, the first webhook of a call.
func (h *Handler) Greeting(w http.ResponseWriter, r *http.Request) {
	_, span := voiceTracer.Start(r.Context(), "voice.greeting")
	defer span.End()

	if !h.authorized(r) {
		h.logger.Warn("invalid twilio voice signature")
		span.RecordError(errors.New("invalid twilio signature"))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reply := h.machine.Start()
	h.write(w, gatherDoc(reply.Prompt, gatherAction(reply.State), h.script.Abandon()))
}

// Gather handles POST /api/voice/gather with the caller's SpeechResult.
func (h *Handler) Gather(w http.ResponseWriter, r *http.Request) {
	ctx, span := voiceTracer.Start(r.Context(), "voice.gather")
	defer span.End()

	if !h.authorized(r) {
		h.logger.Warn("invalid twilio voice signature")
		span.RecordError(errors.New("invalid twilio signature"))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse voice form", "error", err)
		span.RecordError(err)
		h.write(w, hangupDoc(h.script.Unknown()))
		return
	}

	st, err := dialogue.DecodeParams(r.URL.Query())
	if err != nil {
		h.logger.Warn("voice callback for unknown step", "step", r.URL.Query().Get("step"))
		span.RecordError(err)
		h.write(w, hangupDoc(h.script.Unknown()))
		return
	}
	span.SetAttributes(
		attribute.String("htx.voice.step", string(st.Step)),
		attribute.String("htx.voice.call_sid", r.PostFormValue("CallSid")),
	)

	in := dialogue.Input{
		Text:        r.PostFormValue("SpeechResult"),
		CallerPhone: callerPhone(r.PostFormValue("From")),
	}
	reply := h.machine.Advance(ctx, st, in)

	switch {
	case reply.Abandoned:
		h.write(w, hangupDoc(reply.Prompt))
	case reply.Done:
		if reply.Lead != nil {
			h.dispatch(ctx, *reply.Lead)
		}
		h.write(w, hangupDoc(reply.Prompt))
	default:
		h.write(w, gatherDoc(reply.Prompt, gatherAction(reply.State), h.script.Abandon()))
	}
}

// dispatch distributes the lead without holding up the spoken reply.
func (h *Handler) dispatch(ctx context.Context, lead leads.Lead) {
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		res := h.distributor.Distribute(dctx, lead)
		h.logger.Info("voice lead submitted", "lead_id", lead.ID, "phone", leads.MaskPhone(lead.Phone), "matched", len(res.Matched))
	}()
}

// Drain waits for background distributions to finish or ctx to end.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.authToken == "" {
		return true
	}
	return ValidateTwilioSignature(r, h.authToken, webhookURL(r, h.publicBase))
}

func (h *Handler) write(w http.ResponseWriter, doc twimlResponse) {
	body, err := renderTwiML(doc)
	if err != nil {
		h.logger.Error("failed to render twiml", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func gatherAction(st dialogue.State) string {
	return GatherPath + "?" + dialogue.EncodeParams(st).Encode()
}

// callerPhone ignores the placeholders Twilio sends for withheld numbers.
func callerPhone(from string) string {
	from = strings.TrimSpace(from)
	switch strings.ToLower(from) {
	case "", "anonymous", "unknown", "restricted", "private":
		return ""
	}
	return from
}
