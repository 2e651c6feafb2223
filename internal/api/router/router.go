package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/htx-dental-leads/internal/chat"
	httpmiddleware "github.com/wolfman30/htx-dental-leads/internal/http/middleware"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/matching"
	"github.com/wolfman30/htx-dental-leads/internal/voice"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes out.
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	VoiceHandler       *voice.Handler
	ChatHandler        *chat.Handler
	BrowseHandler      *matching.BrowseHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimiter guards the public lead and chat endpoints when set.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Telephony webhooks carry their own signature check.
	if cfg.VoiceHandler != nil {
		r.Route("/api/voice", func(v chi.Router) {
			v.Get("/", cfg.VoiceHandler.Greeting)
			v.Post("/", cfg.VoiceHandler.Greeting)
			v.Post("/gather", cfg.VoiceHandler.Gather)
		})
	}

	r.Group(func(public chi.Router) {
		public.Use(middleware.Compress(5))
		public.Use(middleware.Timeout(30 * time.Second))
		if cfg.RateLimiter != nil {
			public.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.LeadsHandler != nil {
			public.Post("/api/leads", cfg.LeadsHandler.SubmitLead)
		}
		if cfg.ChatHandler != nil {
			public.Post("/api/chat", cfg.ChatHandler.Chat)
		}
		if cfg.BrowseHandler != nil {
			public.Get("/api/providers", cfg.BrowseHandler.Browse)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
