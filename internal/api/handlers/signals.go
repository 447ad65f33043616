package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/internal/service"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// SignalHandler handles signal log endpoints. Every route runs behind
// the scope middleware, so ScopeFrom is always set.
type SignalHandler struct {
	svc    *service.RecommendationService
	logger *logger.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(svc *service.RecommendationService, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		svc:    svc,
		logger: log,
	}
}

// LogSignalRequest evaluates inputs and logs the resulting signal
type LogSignalRequest struct {
	Inputs     contracts.ScoreInputs `json:"inputs"`
	SignalType string                `json:"signal_type,omitempty"` // override; default = primary signal
}

// LogSignal evaluates and records a signal
// POST /api/signals
func (h *SignalHandler) LogSignal(w http.ResponseWriter, r *http.Request) {
	var req LogSignalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var override contracts.SignalType
	if req.SignalType != "" {
		st, err := contracts.ParseSignalType(req.SignalType)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		override = st
	}

	scope := ScopeFrom(r.Context())
	rec, entry, err := h.svc.RecommendAndLog(r.Context(), scope, req.Inputs, override)
	if err != nil {
		h.fail(w, r, err, "Failed to log signal")
		return
	}

	status := http.StatusCreated
	if entry == nil {
		status = http.StatusOK
	}
	respondJSON(w, status, map[string]interface{}{
		"success":        true,
		"duplicate":      entry == nil,
		"entry":          entry,
		"recommendation": rec,
	})
}

// ListSignals returns the scope's logged signals, newest first
// GET /api/signals?limit=100
func (h *SignalHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	entries, err := h.svc.Signals().ListSignals(r.Context(), ScopeFrom(r.Context()), limit)
	if err != nil {
		h.fail(w, r, err, "Failed to list signals")
		return
	}
	if entries == nil {
		entries = []*contracts.SignalLogEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(entries),
		"data":    entries,
	})
}

// DeleteSignal removes one logged signal
// DELETE /api/signals/{id}
func (h *SignalHandler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteSignal(r.Context(), ScopeFrom(r.Context()), id); err != nil {
		h.fail(w, r, err, "Failed to delete signal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSignals removes every signal of the scope
// DELETE /api/signals
func (h *SignalHandler) ClearSignals(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearSignals(r.Context(), ScopeFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err, "Failed to clear signals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": n,
	})
}

// PerformanceResponse is one signal type's outcome summary
type PerformanceResponse struct {
	contracts.SignalPerformance
	WinRate map[contracts.OutcomePeriod]contracts.Float `json:"win_rate"`
}

// GetPerformance returns win rates per signal type
// GET /api/signals/performance?period=7
func (h *SignalHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	periods := contracts.OutcomePeriods
	if s := r.URL.Query().Get("period"); s != "" {
		p, ok := parsePeriod(s)
		if !ok {
			respondError(w, http.StatusBadRequest, "period must be one of 1, 7, 14, 30")
			return
		}
		periods = []contracts.OutcomePeriod{p}
	}

	perf, err := h.svc.Performance(r.Context(), ScopeFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err, "Failed to load signal performance")
		return
	}

	result := make([]PerformanceResponse, 0, len(perf))
	for _, p := range perf {
		rates := make(map[contracts.OutcomePeriod]contracts.Float, len(periods))
		for _, period := range periods {
			rates[period] = s5_signallog.CalculateWinRate(p, period)
		}
		result = append(result, PerformanceResponse{SignalPerformance: p, WinRate: rates})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

func parsePeriod(s string) (contracts.OutcomePeriod, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	for _, p := range contracts.OutcomePeriods {
		if int(p) == n {
			return p, true
		}
	}
	return 0, false
}

func (h *SignalHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, s5_signallog.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "portfolio or user scope required")
	case errors.Is(err, s5_signallog.ErrNotFound):
		respondError(w, http.StatusNotFound, "signal not found")
	case errors.Is(err, contracts.ErrInvalidInputs):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(r.Context(), h.logger).WithError(err).Error(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}
