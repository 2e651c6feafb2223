package matching

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/classify"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// BrowseResponse is the provider listing for directory and location pages.
type BrowseResponse struct {
	Providers []leads.ProviderSummary `json:"providers"`
	AreaSlug  string                  `json:"area,omitempty"`
	Fallback  bool                    `json:"fallback"`
}

// BrowseHandler serves GET /api/providers?procedure=&area=&zip=&limit=.
type BrowseHandler struct {
	source catalog.Source
	logger *logging.Logger
}

func NewBrowseHandler(source catalog.Source, logger *logging.Logger) *BrowseHandler {
	if source == nil {
		panic("matching: catalog source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BrowseHandler{source: source, logger: logger}
}

func (h *BrowseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var c Criteria
	if raw := strings.TrimSpace(q.Get("procedure")); raw != "" {
		id, ok := leads.ParseProcedure(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown procedure"})
			return
		}
		c.Procedure = id
	}
	if raw := strings.TrimSpace(q.Get("area")); raw != "" {
		if _, ok := classify.AreaBySlug(raw); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown area"})
			return
		}
		c.AreaSlug = raw
	} else if zip := strings.TrimSpace(q.Get("zip")); zip != "" {
		if a, ok := classify.AreaForZip(zip); ok {
			c.AreaSlug = a.Slug
		}
	}

	max := BrowseLimit(c, q.Get("limit"))

	providers, err := h.source.Providers(r.Context())
	if err != nil {
		h.logger.Warn("provider catalog unavailable", "error", err)
		writeJSON(w, http.StatusOK, BrowseResponse{Providers: []leads.ProviderSummary{}, AreaSlug: c.AreaSlug})
		return
	}
	matched, fallback := Match(c, providers, max)
	writeJSON(w, http.StatusOK, BrowseResponse{
		Providers: catalog.Summaries(matched),
		AreaSlug:  c.AreaSlug,
		Fallback:  fallback,
	})
}

// BrowseLimit is the page cap for c, lowered to a valid requested limit.
func BrowseLimit(c Criteria, requested string) int {
	max := MaxBrowseMatches
	if c.Procedure != "" && c.AreaSlug != "" {
		max = MaxLocationProcedureMatches
	}
	if n, err := strconv.Atoi(strings.TrimSpace(requested)); err == nil && n > 0 && n < max {
		max = n
	}
	return max
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
