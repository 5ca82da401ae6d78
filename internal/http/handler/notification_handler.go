package handler

import (
	"net/http"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/service"
	"go.uber.org/zap"
)

// validNotificationKinds contains all valid notification kind values
var validNotificationKinds = map[domain.NotificationKind]bool{
	domain.NotificationMatchValid:     true,
	domain.NotificationMissionStart:   true,
	domain.NotificationMissionUpdate:  true,
	domain.NotificationCVStandardized: true,
}

// NotificationHandler handles HTTP requests for consultant notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List godoc
// @Summary List consultant notifications
// @Description Paginated notifications of a consultant, most important first
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param unreadOnly query bool false "Only unread notifications"
// @Param kind query string false "Filter by kind"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NotificationDTO}
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(r)
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	kind := domain.NotificationKind(r.URL.Query().Get("kind"))
	if kind != "" && !validNotificationKinds[kind] {
		respondWithError(w, http.StatusBadRequest,
			"invalid notification kind: must be one of MATCH_VALID, MISSION_START, MISSION_UPDATE, CV_STANDARDIZED")
		return
	}

	result, err := h.notificationService.ListForConsultant(r.Context(), id, page, pageSize, unreadOnly, kind)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list notifications")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetUnreadCount godoc
// @Summary Count unread notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} domain.UnreadCountDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/notifications/count [get]
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "count unread notifications")
		return
	}
	respondJSON(w, http.StatusOK, domain.UnreadCountDTO{Count: count})
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Param notificationId path int true "Notification ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/notifications/{notificationId}/read [put]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	notificationID, ok := parseID(w, r, "notificationId")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), id, notificationID); err != nil {
		respondServiceError(w, r, h.logger, err, "mark notification as read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path int true "Consultant ID"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /consultants/{id}/notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	count, err := h.notificationService.MarkAllAsRead(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "mark notifications as read")
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{
		Success: true,
		Data:    map[string]int64{"marked": count},
	})
}
