package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/service"
	"go.uber.org/zap"
)

// cvFormField is the multipart field carrying an uploaded CV
const cvFormField = "file"

// ConsultantHandler handles HTTP requests for consultants, their competences and CVs
type ConsultantHandler struct {
	consultantService *service.ConsultantService
	logger            *zap.Logger
	maxUploadBytes    int64
}

// NewConsultantHandler creates a new ConsultantHandler instance.
// maxUploadSizeMB bounds the size of uploaded CVs.
func NewConsultantHandler(consultantService *service.ConsultantService, maxUploadSizeMB int64, logger *zap.Logger) *ConsultantHandler {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 20
	}
	return &ConsultantHandler{
		consultantService: consultantService,
		logger:            logger,
		maxUploadBytes:    maxUploadSizeMB << 20,
	}
}

// Create godoc
// @Summary Create consultant
// @Tags Consultants
// @Accept json
// @Produce json
// @Param request body domain.CreateConsultantRequest true "Consultant data"
// @Success 201 {object} domain.ConsultantDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants [post]
func (h *ConsultantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateConsultantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	consultant, err := h.consultantService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create consultant")
		return
	}
	respondJSON(w, http.StatusCreated, consultant)
}

// List godoc
// @Summary List consultants
// @Description Paginated list of consultants with optional filters
// @Tags Consultants
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(Active, Inactive, Pending, Suspended)
// @Param domain query string false "Filter by primary domain" Enums(Digital, Finance, Energy, Industry)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ConsultantDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants [get]
func (h *ConsultantHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.ConsultantStatus(r.URL.Query().Get("status"))
	primaryDomain := domain.Domain(r.URL.Query().Get("domain"))
	if primaryDomain != "" && !primaryDomain.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid domain: must be one of Digital, Finance, Energy, Industry")
		return
	}

	result, err := h.consultantService.List(r.Context(), page, pageSize, status, primaryDomain)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list consultants")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get consultant
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} domain.ConsultantDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id} [get]
func (h *ConsultantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	consultant, err := h.consultantService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get consultant")
		return
	}
	respondJSON(w, http.StatusOK, consultant)
}

// Delete godoc
// @Summary Delete consultant
// @Description Removes a consultant with its competences, matches, missions, notifications and standardized CVs
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id} [delete]
func (h *ConsultantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.consultantService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete consultant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateAvailability godoc
// @Summary Update consultant availability
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param request body domain.UpdateAvailabilityRequest true "Availability window"
// @Success 200 {object} domain.ConsultantDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/availability [put]
func (h *ConsultantHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateAvailabilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	consultant, err := h.consultantService.UpdateAvailability(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update availability")
		return
	}
	respondJSON(w, http.StatusOK, consultant)
}

// Approve godoc
// @Summary Approve consultant
// @Description Validates a consultant profile and activates it
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} domain.ConsultantDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/approve [post]
func (h *ConsultantHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	consultant, err := h.consultantService.Approve(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "approve consultant")
		return
	}
	respondJSON(w, http.StatusOK, consultant)
}

// SetStatus godoc
// @Summary Set consultant status
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param request body domain.UpdateConsultantStatusRequest true "New status"
// @Success 200 {object} domain.ConsultantDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/status [put]
func (h *ConsultantHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateConsultantStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	consultant, err := h.consultantService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update consultant status")
		return
	}
	respondJSON(w, http.StatusOK, consultant)
}

// UploadCV godoc
// @Summary Upload consultant CV
// @Description Ingests a PDF, DOC or DOCX CV sent as multipart form field "file"
// @Tags Consultants
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Consultant ID"
// @Param file formData file true "CV file"
// @Success 200 {object} service.CVIngestionResult
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/cv [post]
func (h *ConsultantHandler) UploadCV(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "CV exceeds the maximum upload size")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(cvFormField)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing CV file in field \""+cvFormField+"\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read uploaded CV")
		return
	}
	if len(data) == 0 {
		respondWithError(w, http.StatusBadRequest, "Uploaded CV is empty")
		return
	}

	result, err := h.consultantService.IngestCV(r.Context(), id, header.Filename, data)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "ingest CV")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListCompetences godoc
// @Summary List consultant competences
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {array} domain.CompetenceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/competences [get]
func (h *ConsultantHandler) ListCompetences(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	competences, err := h.consultantService.ListCompetences(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list competences")
		return
	}
	respondJSON(w, http.StatusOK, competences)
}

// AddCompetence godoc
// @Summary Add consultant competence
// @Description Adds a named competence and refreshes the expertise score
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param request body domain.AddCompetenceRequest true "Competence"
// @Success 201 {object} domain.CompetenceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/competences [post]
func (h *ConsultantHandler) AddCompetence(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.AddCompetenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	competence, err := h.consultantService.AddCompetence(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "add competence")
		return
	}
	respondJSON(w, http.StatusCreated, competence)
}

// RemoveCompetence godoc
// @Summary Remove consultant competence
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param competenceId path int true "Competence ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/competences/{competenceId} [delete]
func (h *ConsultantHandler) RemoveCompetence(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	competenceID, ok := parseID(w, r, "competenceId")
	if !ok {
		return
	}

	if err := h.consultantService.RemoveCompetence(r.Context(), id, competenceID); err != nil {
		respondServiceError(w, r, h.logger, err, "remove competence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecomputeExpertise godoc
// @Summary Recompute consultant expertise
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} expertise.Breakdown
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/expertise [post]
func (h *ConsultantHandler) RecomputeExpertise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	breakdown, err := h.consultantService.RecomputeExpertise(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "recompute expertise")
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}
