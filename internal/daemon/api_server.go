package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/cors"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/scanner"
	"shelfarr/internal/services"
	"shelfarr/internal/store"
)

const shutdownTimeout = 5 * time.Second

// apiServer exposes daemon state and queue operations over HTTP.
type apiServer struct {
	cfg     *config.Config
	daemon  *Daemon
	logger  *slog.Logger
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	s := &apiServer{
		cfg:    cfg,
		daemon: d,
		logger: logging.NewComponentLogger(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/queue", s.handleQueueList)
	mux.HandleFunc("POST /api/queue/{id}/process", s.handleQueueProcess)
	mux.HandleFunc("POST /api/queue/{id}/skip", s.handleQueueSkip)
	mux.HandleFunc("DELETE /api/queue/{id}", s.handleQueueDelete)
	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("PUT /api/settings", s.handleSettingsPut)
	mux.HandleFunc("GET /api/rules", s.handleRulesList)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.API.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	s.handler = corsHandler.Handler(authMiddleware(cfg.API.Token, mux))
	return s, nil
}

// start binds the listener and serves until stop or context cancellation.
func (s *apiServer) start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("api server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.API.Bind)
	if err != nil {
		return fmt.Errorf("bind api server on %s: %w", s.cfg.API.Bind, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.API.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.API.WriteTimeout) * time.Second,
	}

	server := s.server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server terminated", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("addr", listener.Addr().String()))
	return nil
}

// stop shuts the server down gracefully. Safe to call multiple times.
func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
}

// addr reports the bound address, resolving ":0" binds to the actual port.
func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	summary, err := s.daemon.scanner.Scan(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *apiServer) handleQueueList(w http.ResponseWriter, r *http.Request) {
	var statuses []store.QueueStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := store.ParseQueueStatus(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("unknown queue status %q", raw),
			})
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.daemon.store.ListQueueItems(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]queueItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toQueueItemView(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views, "count": len(views)})
}

func (s *apiServer) handleQueueProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload processPayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": err})
		return
	}

	item, err := s.daemon.scanner.ProcessQueueItem(r.Context(), id, payload.descriptor())
	if err != nil {
		if item != nil {
			writeJSON(w, statusForError(err), map[string]any{
				"error": err.Error(),
				"item":  toQueueItemView(item),
			})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQueueItemView(item))
}

func (s *apiServer) handleQueueSkip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := s.daemon.scanner.SkipQueueItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQueueItemView(item))
}

func (s *apiServer) handleQueueDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.daemon.scanner.DeleteQueueItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *apiServer) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.daemon.store.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsView(settings))
}

func (s *apiServer) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": err})
		return
	}

	settings, err := s.daemon.store.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	payload.apply(settings)
	if err := s.daemon.store.UpdateSettings(r.Context(), settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsView(settings))
}

func (s *apiServer) handleRulesList(w http.ResponseWriter, r *http.Request) {
	rules, err := s.daemon.store.ListRules(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, toRuleView(rule))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": views, "count": len(views)})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid queue item id"})
		return 0, false
	}
	return id, true
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			logging.String("method", r.Method),
			logging.String(logging.FieldPath, r.URL.Path),
			logging.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	var verrs validation.Errors
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scanner.ErrScanActive):
		return http.StatusConflict
	case errors.Is(err, services.ErrCollision):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnsupported):
		return http.StatusConflict
	case errors.Is(err, services.ErrConfiguration), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
