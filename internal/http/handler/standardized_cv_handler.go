package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/richat-partners/staffing-api/internal/service"
	"go.uber.org/zap"
)

// StandardizedCVHandler handles HTTP requests for generated firm-branded CVs
type StandardizedCVHandler struct {
	cvService *service.StandardizedCVService
	logger    *zap.Logger
}

// NewStandardizedCVHandler creates a new StandardizedCVHandler instance
func NewStandardizedCVHandler(cvService *service.StandardizedCVService, logger *zap.Logger) *StandardizedCVHandler {
	return &StandardizedCVHandler{
		cvService: cvService,
		logger:    logger,
	}
}

// Generate godoc
// @Summary Generate standardized CV
// @Description Renders the parsed CV of a consultant into the firm template
// @Tags StandardizedCVs
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 201 {object} domain.StandardizedCVDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/standardized-cvs [post]
func (h *StandardizedCVHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	cv, err := h.cvService.Generate(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "generate standardized CV")
		return
	}
	w.Header().Set("Location", cv.URL)
	respondJSON(w, http.StatusCreated, cv)
}

// List godoc
// @Summary List standardized CVs
// @Description Generated CVs of a consultant, newest first
// @Tags StandardizedCVs
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {array} domain.StandardizedCVDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/standardized-cvs [get]
func (h *StandardizedCVHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	cvs, err := h.cvService.List(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list standardized CVs")
		return
	}
	respondJSON(w, http.StatusOK, cvs)
}

// Current godoc
// @Summary Get current standardized CV
// @Tags StandardizedCVs
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} domain.StandardizedCVDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/standardized-cvs/current [get]
func (h *StandardizedCVHandler) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	cv, err := h.cvService.Current(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get standardized CV")
		return
	}
	respondJSON(w, http.StatusOK, cv)
}

// Download godoc
// @Summary Download standardized CV
// @Description Streams the PDF and counts the download
// @Tags StandardizedCVs
// @Produce application/pdf
// @Param id path int true "Standardized CV ID"
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /standardized-cvs/{id}/download [get]
func (h *StandardizedCVHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	reader, cv, err := h.cvService.Open(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "download standardized CV")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cv.Filename))
	if cv.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(cv.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream standardized CV", zap.Uint("standardized_cv_id", id), zap.Error(err))
	}
}
