package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/dialogue"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

const maxBodyBytes = 256 << 10

// Request is the widget payload. Messages drive agent mode; State and Mode
// drive guided mode.
type Request struct {
	Messages []Message       `json:"messages"`
	Mode     Mode            `json:"mode,omitempty"`
	State    *dialogue.State `json:"state,omitempty"`
}

// Handler serves POST /api/chat. With an agent configured, chat-mode turns go
// to the model; otherwise, and always for the quote flow, the guided machines
// answer.
type Handler struct {
	agent        *Agent
	guided       *Guided
	phoneDisplay string
	logger       *logging.Logger
}

func NewHandler(agent *Agent, guided *Guided, phoneDisplay string, logger *logging.Logger) *Handler {
	if agent == nil && guided == nil {
		panic("chat: agent or guided mode required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{agent: agent, guided: guided, phoneDisplay: phoneDisplay, logger: logger}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("invalid chat request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeChat
	}
	if mode != ModeChat && (h.guided == nil || !h.guided.Supports(mode)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported mode"})
		return
	}

	var resp Response
	switch {
	case h.agent != nil && mode == ModeChat && req.State == nil:
		if len(req.Messages) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages required"})
			return
		}
		resp = h.agent.Reply(r.Context(), req.Messages)
	case h.guided != nil:
		resp = h.guided.Turn(r.Context(), mode, req.State, lastUserText(req.Messages))
	default:
		resp = Response{Role: RoleAssistant, Content: LastResortMessage(h.phoneDisplay)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func lastUserText(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return strings.TrimSpace(msgs[i].Content)
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
