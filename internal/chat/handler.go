package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/foliolabs/folio/internal/convlog"
	"go.uber.org/zap"
)

// ConversationLister reads back recent conversation log entries.
type ConversationLister interface {
	List(ctx context.Context, limit int) ([]convlog.Record, error)
}

// Handler exposes the chat pipeline over HTTP.
type Handler struct {
	orch    *Orchestrator
	history ConversationLister
	logger  *zap.Logger
}

// NewHandler creates the chat HTTP handler. history may be nil, in which case
// the history endpoint reports an empty log.
func NewHandler(orch *Orchestrator, history ConversationLister, logger *zap.Logger) *Handler {
	return &Handler{orch: orch, history: history, logger: logger}
}

// RegisterRoutes attaches the chat endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("GET /api/chat/history", h.handleHistory)
}

// handleChat godoc
//
//	@Summary		Ask the analytics assistant
//	@Description	Classifies the latest user message, computes statistics over the portfolio dataset, and returns a structured answer with a chart spec, insights, and a forecast.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		Request	true	"Conversation messages"
//	@Success		200		{object}	Response
//	@Failure		400		{object}	Error
//	@Failure		422		{object}	Error
//	@Failure		500		{object}	Error
//	@Router			/api/chat [post]
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	// Unexpected pipeline failures become a generic 500 rather than a blank
	// connection reset.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("chat pipeline panicked", zap.Any("panic", rec))
			h.writeError(w, &Error{
				Status:  http.StatusInternalServerError,
				Message: "Failed to process request",
				Code:    CodeInternalError,
			})
		}
	}()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &Error{Status: http.StatusBadRequest, Message: "Missing or invalid messages"})
		return
	}

	resp, cerr := h.orch.Handle(r.Context(), req)
	if cerr != nil {
		h.writeError(w, cerr)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleHistory godoc
//
//	@Summary		Recent conversation log
//	@Description	Returns up to the last 100 conversation turns in chronological order.
//	@Tags			chat
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of records"
//	@Success		200		{array}		convlog.Record
//	@Failure		500		{object}	Error
//	@Router			/api/chat/history [get]
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeJSON(w, http.StatusOK, []convlog.Record{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read conversation log", zap.Error(err))
		h.writeError(w, &Error{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process request",
			Code:    CodeInternalError,
		})
		return
	}
	if records == nil {
		records = []convlog.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	h.writeJSON(w, e.Status, e)
}
