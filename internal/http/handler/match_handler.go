package handler

import (
	"net/http"

	"github.com/richat-partners/staffing-api/internal/service"
	"go.uber.org/zap"
)

// MatchHandler handles HTTP requests for match generation and the validation lifecycle
type MatchHandler struct {
	matchingService  *service.MatchingService
	lifecycleService *service.MatchLifecycleService
	logger           *zap.Logger
}

// NewMatchHandler creates a new MatchHandler instance
func NewMatchHandler(matchingService *service.MatchingService, lifecycleService *service.MatchLifecycleService, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		matchingService:  matchingService,
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Generate godoc
// @Summary Generate tender matches
// @Description Replaces the matches of a tender with a fresh batch over every eligible consultant
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Success 200 {object} domain.BatchResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/matches [post]
func (h *MatchHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.matchingService.GenerateForTender(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "generate matches")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListForTender godoc
// @Summary List tender matches
// @Description Matches of a tender, best score first
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Success 200 {array} domain.MatchResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/matches [get]
func (h *MatchHandler) ListForTender(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	matches, err := h.matchingService.ListForTender(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list matches")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// ListForConsultant godoc
// @Summary List consultant matches
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {array} domain.MatchResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/matches [get]
func (h *MatchHandler) ListForConsultant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	matches, err := h.matchingService.ListForConsultant(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list matches")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// ScorePair godoc
// @Summary Score one consultant
// @Description Computes the score of one consultant against one tender without storing it
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Param consultantId path int true "Consultant ID"
// @Success 200 {object} matching.Breakdown
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/score/{consultantId} [get]
func (h *MatchHandler) ScorePair(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	consultantID, ok := parseID(w, r, "consultantId")
	if !ok {
		return
	}

	breakdown, err := h.matchingService.ScorePair(r.Context(), consultantID, tenderID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "score consultant")
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}

// Validate godoc
// @Summary Validate match
// @Description Marks a match as validated, schedules a mission and notifies the consultant
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} domain.ValidationOutcomeDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /matches/{id}/validate [post]
func (h *MatchHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	outcome, err := h.lifecycleService.Validate(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "validate match")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// Invalidate godoc
// @Summary Invalidate match
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} domain.ValidationOutcomeDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /matches/{id}/invalidate [post]
func (h *MatchHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	outcome, err := h.lifecycleService.Invalidate(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "invalidate match")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}
