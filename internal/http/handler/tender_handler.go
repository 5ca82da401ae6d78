package handler

import (
	"net/http"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/service"
	"go.uber.org/zap"
)

// TenderHandler handles HTTP requests for tenders and their criteria
type TenderHandler struct {
	tenderService *service.TenderService
	logger        *zap.Logger
	now           func() time.Time
}

// NewTenderHandler creates a new TenderHandler instance
func NewTenderHandler(tenderService *service.TenderService, logger *zap.Logger) *TenderHandler {
	return &TenderHandler{
		tenderService: tenderService,
		logger:        logger,
		now:           time.Now,
	}
}

// Ingest godoc
// @Summary Ingest a tender
// @Description Stores a scraped tender. Answers 201 for a new tender and 200 when the title and source URL were already known
// @Tags Tenders
// @Accept json
// @Produce json
// @Param request body domain.IngestTenderRequest true "Tender data"
// @Success 200 {object} domain.TenderDTO
// @Success 201 {object} domain.TenderDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders [post]
func (h *TenderHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestTenderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tender, created, err := h.tenderService.Ingest(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "ingest tender")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, tender)
}

// List godoc
// @Summary List tenders
// @Description Paginated list of tenders. With open=true only tenders whose deadline has not passed are returned, unpaginated
// @Tags Tenders
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param open query bool false "Only open tenders"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TenderDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders [get]
func (h *TenderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("open") == "true" {
		tenders, err := h.tenderService.ListOpen(r.Context(), h.now())
		if err != nil {
			respondServiceError(w, r, h.logger, err, "list open tenders")
			return
		}
		respondJSON(w, http.StatusOK, tenders)
		return
	}

	page, pageSize := parsePagination(r)
	result, err := h.tenderService.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list tenders")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get tender
// @Tags Tenders
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Success 200 {object} domain.TenderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id} [get]
func (h *TenderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	tender, err := h.tenderService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get tender")
		return
	}
	respondJSON(w, http.StatusOK, tender)
}

// Enrich godoc
// @Summary Enrich tender
// @Description Updates description, criteria text, type or deadline. Cached scores of the tender are dropped
// @Tags Tenders
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Param request body domain.EnrichTenderRequest true "Fields to update"
// @Success 200 {object} domain.TenderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id} [patch]
func (h *TenderHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.EnrichTenderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tender, err := h.tenderService.Enrich(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "enrich tender")
		return
	}
	respondJSON(w, http.StatusOK, tender)
}

// ListCriteria godoc
// @Summary List tender criteria
// @Tags Tenders
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Success 200 {array} domain.CriterionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/criteria [get]
func (h *TenderHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	criteria, err := h.tenderService.ListCriteria(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list criteria")
		return
	}
	respondJSON(w, http.StatusOK, criteria)
}

// AddCriterion godoc
// @Summary Add tender criterion
// @Description Adds a weighted structured criterion
// @Tags Tenders
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Param request body domain.AddCriterionRequest true "Criterion"
// @Success 201 {object} domain.CriterionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/criteria [post]
func (h *TenderHandler) AddCriterion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.AddCriterionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	criterion, err := h.tenderService.AddCriterion(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "add criterion")
		return
	}
	respondJSON(w, http.StatusCreated, criterion)
}

// RemoveCriterion godoc
// @Summary Remove tender criterion
// @Tags Tenders
// @Accept json
// @Produce json
// @Param id path int true "Tender ID"
// @Param criterionId path int true "Criterion ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tenders/{id}/criteria/{criterionId} [delete]
func (h *TenderHandler) RemoveCriterion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	criterionID, ok := parseID(w, r, "criterionId")
	if !ok {
		return
	}

	if err := h.tenderService.RemoveCriterion(r.Context(), id, criterionID); err != nil {
		respondServiceError(w, r, h.logger, err, "remove criterion")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
