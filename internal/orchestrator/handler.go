package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"podcast-orchestrator/internal/podcast"

	"github.com/go-chi/chi/v5"
)

// HealthChecker verifies that an upstream dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Envelope is the uniform JSON response body of every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GenerateVideosRequest is the body of POST /api/generate-videos.
type GenerateVideosRequest struct {
	Scenes    []podcast.Scene `json:"scenes"`
	SessionID SessionID       `json:"sessionId"`
}

// Handler exposes orchestrator HTTP endpoints using go-chi.
type Handler struct {
	svc    *Service
	log    *slog.Logger
	health HealthChecker
}

// NewHandler returns a Handler that uses the given Service and Logger.
// health checks the AI upstream on /healthz?deep=1 and may be nil (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, health HealthChecker) *Handler {
	return &Handler{svc: svc, log: log, health: health}
}

// RegisterRoutes mounts the API endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-script", h.GenerateScript)
		r.Post("/generate-videos", h.GenerateVideos)
		r.Get("/check-status", h.CheckStatus)
		r.Delete("/sessions", h.ClearSessions)
		r.Get("/sessions/{session_id}", h.GetSession)
		r.Delete("/sessions/{session_id}", h.DeleteSession)
	})
}

// GenerateScript handles POST /api/generate-script.
// Body: { "topic": "...", "style": "educational", "duration": "medium" }.
func (h *Handler) GenerateScript(w http.ResponseWriter, r *http.Request) {
	var req podcast.ScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid script body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	script, err := h.svc.GenerateScript(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, podcast.ErrTopicRequired), errors.Is(err, podcast.ErrTopicTooLong):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrScriptWriterUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.log.Error("script generation failed", slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, script)
}

// GenerateVideos handles POST /api/generate-videos.
// Body: { "scenes": [...], "sessionId": "..." }. It returns before any scene renders.
func (h *Handler) GenerateVideos(w http.ResponseWriter, r *http.Request) {
	var req GenerateVideosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid generate body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ack, err := h.svc.StartGeneration(req.SessionID, req.Scenes)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionIDRequired), errors.Is(err, ErrNoScenes), errors.Is(err, ErrDuplicateScene):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("video generation setup failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "video generation setup failed: "+err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, ack)
}

// CheckStatus handles GET /api/check-status?sessionId=....
func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(strings.TrimSpace(r.URL.Query().Get("sessionId")))
	h.writeStatus(w, sessionID)
}

// GetSession handles GET /api/sessions/{session_id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, SessionID(strings.TrimSpace(chi.URLParam(r, "session_id"))))
}

func (h *Handler) writeStatus(w http.ResponseWriter, sessionID SessionID) {
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, ErrSessionIDRequired.Error())
		return
	}

	report, err := h.svc.Status(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeData(w, http.StatusOK, report)
}

// DeleteSession handles DELETE /api/sessions/{session_id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(strings.TrimSpace(chi.URLParam(r, "session_id")))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, ErrSessionIDRequired.Error())
		return
	}

	if err := h.svc.DeleteSession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]SessionID{"deleted": sessionID})
}

// ClearSessions handles DELETE /api/sessions.
func (h *Handler) ClearSessions(w http.ResponseWriter, r *http.Request) {
	n := h.svc.ClearSessions()
	writeData(w, http.StatusOK, map[string]int{"cleared": n})
}

// Health handles GET /healthz. With ?deep=1 it also checks the AI upstream.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("deep") == "1" && h.health != nil {
		if err := h.health.HealthCheck(r.Context()); err != nil {
			h.log.Warn("upstream health check failed", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
