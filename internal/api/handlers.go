package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/api/middleware"
	"github.com/example/stock-ledger/internal/auth"
	"github.com/example/stock-ledger/internal/command"
	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/query"
	"github.com/example/stock-ledger/internal/report"
	"github.com/example/stock-ledger/internal/session"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	exporter     *report.Exporter
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, exporter *report.Exporter, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		exporter:     exporter,
		logger:       logger,
	}
}

// Item Handlers

func (h *Handlers) GetItems(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queryHandler.ListStock(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddItem
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.Actor = middleware.GetUsername(r.Context())

	code, err := h.cmdHandler.AddItem(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"code": code})
}

// Request Handlers

func (h *Handlers) GetRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queryHandler.ListPendingRequests(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handlers) ApproveRequests(w http.ResponseWriter, r *http.Request) {
	var cmd command.ApproveRequests
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.cmdHandler.ApproveRequests(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"outcomes":       result.Outcomes,
		"applied":        result.Applied(),
		"unmatched":      nonNil(result.Unmatched()),
		"negative_stock": nonNil(result.NegativeStock()),
	})
}

// History / Event Handlers

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.queryHandler.ListHistory(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *Handlers) GetEventTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.queryHandler.ListEventTags(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

// Draft Handlers

func (h *Handlers) GetDrafts(w http.ResponseWriter, r *http.Request, reqType store.RequestType) {
	s, _ := middleware.GetSessionFromContext(r.Context())
	if s == nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cart, err := h.queryHandler.GetDraftCart(s.ID, reqType)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *Handlers) AddDraftLine(w http.ResponseWriter, r *http.Request, reqType store.RequestType) {
	s, _ := middleware.GetSessionFromContext(r.Context())
	if s == nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var cmd command.AddDraftLine
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.SessionID = s.ID
	cmd.Type = reqType

	line, err := h.cmdHandler.AddDraftLine(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

func (h *Handlers) RemoveDraftLine(w http.ResponseWriter, r *http.Request, reqType store.RequestType, lineParam string) {
	s, _ := middleware.GetSessionFromContext(r.Context())
	if s == nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	n, err := strconv.Atoi(lineParam)
	if err != nil {
		respondJSONError(w, "Invalid line number", http.StatusBadRequest)
		return
	}

	cmd := command.RemoveDraftLine{SessionID: s.ID, Type: reqType, Line: n}
	if err := h.cmdHandler.RemoveDraftLine(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SubmitDrafts(w http.ResponseWriter, r *http.Request, reqType store.RequestType) {
	s, _ := middleware.GetSessionFromContext(r.Context())
	if s == nil {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	created, err := h.cmdHandler.SubmitDrafts(r.Context(), command.SubmitDrafts{SessionID: s.ID, Type: reqType})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Report Handlers

func (h *Handlers) DownloadInventoryReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.Render(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidName),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidRequestType),
		errors.Is(err, ledger.ErrEmptyBatch),
		errors.Is(err, session.ErrEventRequired),
		errors.Is(err, command.ErrUnknownItem),
		errors.Is(err, command.ErrMixedSelection):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		respondJSONError(w, "internal server error", status)
		return
	}
	respondJSONError(w, err.Error(), status)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
