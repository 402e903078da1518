package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwatch/shelfwatch/pkg/inventory"
	"github.com/shelfwatch/shelfwatch/pkg/model"
	"github.com/shelfwatch/shelfwatch/pkg/storage"
)

const checkTimeout = 30 * time.Second

// Checker runs the low-stock check; both the scheduler and this server
// drive the same action.
type Checker interface {
	CheckAndSend(ctx context.Context) (model.CheckResult, error)
}

// Server provides the manual trigger endpoint, health check and read APIs.
type Server struct {
	checker Checker
	store   storage.Store
	token   string
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates the API server. When a token is set, every endpoint
// except the health check requires it; an empty token leaves the API open.
func NewServer(checker Checker, store storage.Store, token string, logger *slog.Logger) *Server {
	s := &Server{
		checker: checker,
		store:   store,
		token:   token,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/check", s.handleCheck)
	s.mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	s.mux.HandleFunc("GET /api/v1/stock", s.handleStock)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()

	if !s.authorized(r) {
		s.logger.Warn("trigger rejected", "request_id", reqID, "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	result, err := s.checker.CheckAndSend(ctx)
	if err != nil {
		s.logger.Error("manual check failed", "request_id", reqID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("manual check complete", "request_id", reqID, "result", string(result))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"result": string(result)})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.store.ListAlerts(ctx, limit)
	if err != nil {
		s.logger.Error("list alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []model.AlertRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var items []model.Item
	var err error
	if r.URL.Query().Get("low") != "" {
		threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
		if threshold <= 0 {
			threshold = inventory.DefaultThreshold
		}
		items, err = s.store.LowStockItems(ctx, threshold)
	} else {
		items, err = s.store.ListItems(ctx)
	}
	if err != nil {
		s.logger.Error("list stock", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// authorized checks the optional shared secret, accepted either as a
// bearer token or in X-Trigger-Token.
func (s *Server) authorized(r *http.Request) bool {
	if s.token == "" {
		return true
	}

	provided := r.Header.Get("X-Trigger-Token")
	if provided == "" {
		auth := r.Header.Get("Authorization")
		provided = strings.TrimPrefix(auth, "Bearer ")
	}

	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.token)) == 1
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
