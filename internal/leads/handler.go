package leads

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

const maxSubmissionBytes = 64 << 10

// SubmissionRequest is the JSON body accepted by POST /api/leads.
type SubmissionRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Procedure        string `json:"procedure,omitempty"`
	Source           string `json:"source,omitempty"`
	LocationInterest string `json:"location_interest,omitempty"`
	Urgency          string `json:"urgency,omitempty"`
	UTMSource        string `json:"utm_source,omitempty"`
	UTMMedium        string `json:"utm_medium,omitempty"`
	UTMCampaign      string `json:"utm_campaign,omitempty"`
}

// Fields converts the request into collected lead fields.
func (r SubmissionRequest) Fields() Fields {
	procedure, _ := ParseProcedure(r.Procedure)
	urgency, _ := ParseUrgency(r.Urgency)
	return Fields{
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Procedure:   procedure,
		Location:    r.LocationInterest,
		Urgency:     urgency,
		Source:      Source(r.Source),
		UTMSource:   r.UTMSource,
		UTMMedium:   r.UTMMedium,
		UTMCampaign: r.UTMCampaign,
	}
}

// Handler serves the direct lead submission endpoint.
type Handler struct {
	builder     *Builder
	distributor Distributor
	logger      *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(builder *Builder, distributor Distributor, logger *logging.Logger) *Handler {
	if builder == nil {
		panic("leads: builder required")
	}
	if distributor == nil {
		panic("leads: distributor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{builder: builder, distributor: distributor, logger: logger}
}

// SubmitLead handles POST /api/leads. The only rejection is a missing name or
// phone; anything else that goes wrong still answers success with no matches.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req SubmissionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSubmissionBytes)).Decode(&req); err != nil {
		h.logger.Warn("lead submission: unreadable body", "error", err)
		writeJSON(w, http.StatusOK, Result{Success: true, Matched: []ProviderSummary{}})
		return
	}

	lead := h.builder.Build(ChannelForm, req.Fields())
	if err := lead.Validate(); err != nil {
		h.logger.Info("lead submission rejected", "error", err, "source", req.Source)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Name and phone are required"})
		return
	}

	result := h.distributor.Distribute(r.Context(), lead)
	if result.Matched == nil {
		result.Matched = []ProviderSummary{}
	}
	result.Success = true

	h.logger.Info("lead submitted",
		"lead_id", lead.ID,
		"lead_source", lead.Source,
		"procedure", lead.Procedure,
		"phone", MaskPhone(lead.Phone),
		"matched", len(result.Matched),
	)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
