package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shortsforge/automation-engine/internal/automation"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Handler serves the engine over HTTP
type Handler struct {
	engine   Engine
	metrics  MetricsSource
	validate *validator.Validate
	// background work started by a request outlives it
	background func() context.Context
}

type topicRequest struct {
	Topic string `json:"topic" validate:"required,max=300"`
}

type selectionRequest struct {
	VideoID string `json:"videoId"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type connectRequest struct {
	AccessToken string `json:"accessToken" validate:"required_without=Error"`
	Error       string `json:"error"`
}

type nicheRequest struct {
	Niche string `json:"niche" validate:"required,max=300"`
}

// stateResponse is the AppState as clients see it. The OAuth access token
// is never sent.
type stateResponse struct {
	models.AppState
	NextAutomatedRun *time.Time `json:"nextAutomatedRun,omitempty"`
}

// NewHandler creates the API handler
func NewHandler(engine Engine, metrics MetricsSource) *Handler {
	return &Handler{
		engine:     engine,
		metrics:    metrics,
		validate:   validator.New(),
		background: context.Background,
	}
}

// Router registers every route on a new mux router
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", h.metricsHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.stateHandler).Methods("GET")
	api.HandleFunc("/topic", h.topicHandler).Methods("POST")
	api.HandleFunc("/videos/generate", h.generateHandler).Methods("POST")
	api.HandleFunc("/selection", h.selectionHandler).Methods("POST")
	api.HandleFunc("/videos/{youtubeId}/comments", h.commentsHandler).Methods("POST")
	api.HandleFunc("/comments/{id}/suggestion", h.suggestionHandler).Methods("POST")
	api.HandleFunc("/comments/{id}/reply", h.replyHandler).Methods("POST")
	api.HandleFunc("/stats/refresh", h.statsHandler).Methods("POST")
	api.HandleFunc("/automation/toggle", h.toggleHandler).Methods("POST")
	api.HandleFunc("/youtube/connect", h.connectHandler).Methods("POST")
	api.HandleFunc("/youtube/disconnect", h.disconnectHandler).Methods("POST")
	api.HandleFunc("/strategy/niche", h.nicheHandler).Methods("POST")
	api.HandleFunc("/strategy/generate", h.strategyHandler).Methods("POST")
	api.HandleFunc("/strategy/select", h.selectIdeaHandler).Methods("POST")

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.metrics.GetMetrics()))
}

func (h *Handler) stateHandler(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

func (h *Handler) topicHandler(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.SetVideoTopic(req.Topic)
	h.writeState(w, http.StatusOK)
}

func (h *Handler) generateHandler(w http.ResponseWriter, r *http.Request) {
	if !h.engine.StartGeneration(false) {
		writeError(w, http.StatusConflict, "A video is already being generated or YouTube is not connected")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Generation started"})
}

func (h *Handler) selectionHandler(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.engine.SelectVideo(req.VideoID) {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) commentsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.FetchComments(r.Context(), mux.Vars(r)["youtubeId"]); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) suggestionHandler(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.engine.GenerateReplySuggestion(r.Context(), mux.Vars(r)["id"], req.Text); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) replyHandler(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.engine.PostReply(r.Context(), mux.Vars(r)["id"], req.Text); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) statsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Snapshot().YouTube.Connected {
		writeEngineError(w, automation.ErrNotConnected)
		return
	}

	ctx := h.background()
	go func() {
		if err := h.engine.RefreshStats(ctx); err != nil {
			logrus.Errorf("Manual stats refresh failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Stats refresh started"})
}

func (h *Handler) toggleHandler(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Snapshot().YouTube.Connected {
		writeEngineError(w, automation.ErrNotConnected)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isAutomated": h.engine.ToggleAutomation()})
}

func (h *Handler) connectHandler(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Error != "" {
		h.engine.ConnectError(req.Error)
		h.writeState(w, http.StatusOK)
		return
	}

	if err := h.engine.ConnectSuccess(r.Context(), req.AccessToken); err != nil {
		writeError(w, http.StatusBadGateway, automation.ConnectFailedMessage)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) disconnectHandler(w http.ResponseWriter, r *http.Request) {
	h.engine.Disconnect()
	h.writeState(w, http.StatusOK)
}

func (h *Handler) nicheHandler(w http.ResponseWriter, r *http.Request) {
	var req nicheRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.SetStrategyNiche(req.Niche)
	h.writeState(w, http.StatusOK)
}

func (h *Handler) strategyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.GenerateContentStrategy(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) selectIdeaHandler(w http.ResponseWriter, r *http.Request) {
	var idea models.StrategyIdea
	if !h.decode(w, r, &idea) {
		return
	}
	h.engine.SelectStrategyIdea(idea)
	h.writeState(w, http.StatusOK)
}

func (h *Handler) writeState(w http.ResponseWriter, status int) {
	state := h.engine.Snapshot()
	state.YouTube.AccessToken = ""

	resp := stateResponse{AppState: state}
	if at, ok := h.engine.NextRun(); ok {
		resp.NextAutomatedRun = &at
	}
	writeJSON(w, status, resp)
}

// decode reads and validates a JSON body, answering 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, automation.ErrNotConnected) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}
