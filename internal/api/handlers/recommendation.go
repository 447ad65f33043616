package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/service"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// maxBatchSize bounds one batch request
const maxBatchSize = 500

// RecommendationHandler handles scoring API endpoints
// ⭐ SSOT: 추천 API 핸들러는 이 구조체에서만
type RecommendationHandler struct {
	svc    *service.RecommendationService
	logger *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(svc *service.RecommendationService, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		svc:    svc,
		logger: log,
	}
}

// BatchRequest is the body of a batch evaluation
type BatchRequest struct {
	Inputs []contracts.ScoreInputs `json:"inputs"`
}

// Evaluate scores one ticker
// POST /api/recommendations
func (h *RecommendationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var in contracts.ScoreInputs
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.svc.Recommend(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, in.Ticker)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

// EvaluateBatch scores many tickers, preserving request order
// POST /api/recommendations/batch
func (h *RecommendationHandler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Inputs) == 0 {
		respondError(w, http.StatusBadRequest, "inputs is required")
		return
	}
	if len(req.Inputs) > maxBatchSize {
		respondError(w, http.StatusRequestEntityTooLarge, "too many inputs")
		return
	}

	recs, err := h.svc.RecommendBatch(r.Context(), req.Inputs)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(recs),
		"data":    recs,
	})
}

func (h *RecommendationHandler) fail(w http.ResponseWriter, r *http.Request, err error, ticker string) {
	if errors.Is(err, contracts.ErrInvalidInputs) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.FromContext(r.Context(), h.logger).WithError(err).WithField("ticker", ticker).Error("Failed to evaluate recommendation")
	respondError(w, http.StatusInternalServerError, "Failed to evaluate recommendation")
}
