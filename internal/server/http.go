// internal/server/http.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	stderrors "chatfood-service/internal/common/errors"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/common/validation"
	"chatfood-service/internal/models"
)

// ChatRequest is the one inbound payload shape. The raw body is schema
// validated before this type ever sees it.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

// ChatResponse wraps the turn result with the session key so a client that
// sent none learns its server-generated key.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	*models.TurnResult
}

type errorResponse struct {
	Error *stderrors.StandardError `json:"error"`
}

// Engine is the slice of the conversation orchestrator the handler needs.
type Engine interface {
	ProcessTurn(ctx context.Context, sessionKey, userID, message string) *models.TurnResult
	Reset(ctx context.Context, sessionKey string) error
}

// Handler serves the chat boundary.
type Handler struct {
	engine Engine
	logger logger.Logger
}

func NewHandler(engine Engine, log logger.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: log.With(map[string]interface{}{
			"component": "http",
		}),
	}
}

// Register wires the handler's routes onto the mux. The /metrics route is
// attached by the caller.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", h.handleChat)
	mux.HandleFunc("/api/chat/reset", h.handleReset)
	mux.HandleFunc("/healthz", h.handleHealth)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, stderrors.NewRequestValidationError("unreadable request body"))
		return
	}

	result, err := validation.ValidateBytes(body, validation.ChatRequestSchema)
	if err != nil || !result.Valid {
		details := "malformed JSON"
		if err == nil {
			details = validationDetails(result)
		}
		h.writeError(w, http.StatusBadRequest, stderrors.NewRequestValidationError(details))
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, stderrors.NewRequestValidationError("malformed JSON"))
		return
	}

	sessionKey := req.SessionID
	if sessionKey == "" {
		sessionKey = uuid.NewString()
	}

	turn := h.engine.ProcessTurn(r.Context(), sessionKey, req.UserEmail, req.Message)

	h.logger.Info("turn processed", map[string]interface{}{
		"sessionKey":       sessionKey,
		"conversationType": turn.ConversationType,
	})
	h.writeJSON(w, http.StatusOK, &ChatResponse{SessionID: sessionKey, TurnResult: turn})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		h.writeError(w, http.StatusBadRequest, stderrors.NewRequestValidationError("sessionId is required"))
		return
	}

	if err := h.engine.Reset(r.Context(), req.SessionID); err != nil {
		h.logger.WithError(err).Error("session reset failed", map[string]interface{}{
			"sessionKey": req.SessionID,
		})
		h.writeError(w, http.StatusInternalServerError, stderrors.Normalize(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("write response failed", nil)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, stdErr *stderrors.StandardError) {
	h.writeJSON(w, status, &errorResponse{Error: stdErr})
}

func validationDetails(result *validation.ValidationResult) string {
	if len(result.Errors) == 0 {
		return "invalid request"
	}
	details := result.Errors[0].Message
	if result.Errors[0].Field != "" && result.Errors[0].Field != "(root)" {
		details = result.Errors[0].Field + ": " + details
	}
	return details
}
