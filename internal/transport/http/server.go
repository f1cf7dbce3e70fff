package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cleanupService "github.com/mkorobov/daily-topic-bot/internal/modules/cleanup/service"
	topicService "github.com/mkorobov/daily-topic-bot/internal/modules/topic/service"
	"github.com/mkorobov/daily-topic-bot/internal/shared/config"
	sloghttp "github.com/samber/slog-http"
)

// Server exposes operational endpoints: liveness and a moderation status
// summary.
type Server struct {
	cfg     *config.Config
	topics  *topicService.Service
	cleanup *cleanupService.Service
	logger  *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, topics *topicService.Service, cleanup *cleanupService.Service) *Server {
	return &Server{
		cfg:     cfg,
		topics:  topics,
		cleanup: cleanup,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /statusz", s.handleStatus)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("Ops server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

type topicStatus struct {
	Name           string `json:"name"`
	Silence        string `json:"silence,omitempty"`
	AutoDelete     string `json:"auto_delete,omitempty"`
	StopWords      int    `json:"stop_words"`
	AutoResponses  int    `json:"auto_responses"`
	CleanupAt      string `json:"cleanup_at,omitempty"`
	CleanupPending int    `json:"cleanup_pending"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	topics, err := s.topics.All()
	if err != nil {
		s.logger.Error("Error loading topics for status", "error", err)
		http.Error(w, "Failed to load status", http.StatusInternalServerError)
		return
	}

	out := make(map[string]topicStatus, len(topics))
	for _, t := range topics {
		st := topicStatus{
			Name:          t.Name,
			StopWords:     len(t.StopWords),
			AutoResponses: len(t.AutoResponses),
		}
		if t.SilentWindow != nil {
			st.Silence = t.SilentWindow.String()
		}
		if t.AutoDeleteWindow != nil {
			st.AutoDelete = t.AutoDeleteWindow.String()
		}
		if t.CleanupTime != nil {
			st.CleanupAt = t.CleanupTime.String()
			st.CleanupPending = s.cleanup.PendingCount(t.Key)
		}
		out[t.Key.String()] = st
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Error("Error encoding status response", "error", err)
	}
}
