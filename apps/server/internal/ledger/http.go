package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type HTTPHandler struct {
	ledger Service
	log    logrus.FieldLogger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(ledgerService Service, logger logrus.FieldLogger) *HTTPHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPHandler{
		ledger: ledgerService,
		log:    logger.WithField("component", "ledger_http"),
	}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/rounds/recent", h.handleRecent)
	r.Get("/api/rounds/{roundID}", h.handleGetRound)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, limit)
	if err != nil {
		h.log.WithError(err).Warn("query recent rounds failed")
		writeError(w, http.StatusInternalServerError, "query recent rounds failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) handleGetRound(w http.ResponseWriter, r *http.Request) {
	roundID := strings.TrimSpace(chi.URLParam(r, "roundID"))
	if roundID == "" {
		writeError(w, http.StatusBadRequest, "missing round id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rec, err := h.ledger.GetRound(ctx, roundID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("round_id", roundID).Warn("query round failed")
		writeError(w, http.StatusInternalServerError, "query round failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
