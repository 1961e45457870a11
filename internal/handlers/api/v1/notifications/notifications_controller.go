// file: internal/handlers/api/v1/notifications/notifications_controller.go
package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"merithub/internal/middleware"
	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/gorilla/mux"
)

// NotificationController handles notification feed and device token endpoints
type NotificationController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewNotificationController creates a new notification API controller
func NewNotificationController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *NotificationController {
	return &NotificationController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// requireAuth returns the caller's auth context or writes a 400
func (c *NotificationController) requireAuth(w http.ResponseWriter, r *http.Request) *middleware.AuthContext {
	authCtx := middleware.GetAuthContext(r.Context())
	if authCtx == nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("authentication required", nil))
		return nil
	}
	return authCtx
}

// ===============================
// FEED
// ===============================

// ListNotifications returns the caller's notification feed, newest first
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} response.APIResponse
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := c.serviceCollection.Notification.ListNotifications(r.Context(), authCtx.UserID, limit, offset)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, items)
}

// GetUnreadCount returns the caller's unread notification count
// @Summary Get unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	count, err := c.serviceCollection.Notification.UnreadCount(r.Context(), authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]int{"unread": count})
}

// MarkRead marks one notification as read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	notificationID := mux.Vars(r)["id"]
	if err := c.serviceCollection.Notification.MarkRead(r.Context(), authCtx.UserID, notificationID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]string{"status": "read"})
}

// MarkAllRead marks every notification of the caller as read
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	if err := c.serviceCollection.Notification.MarkAllRead(r.Context(), authCtx.UserID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]string{"status": "read"})
}

// ===============================
// PREFERENCES
// ===============================

// GetPreferences returns the caller's push preferences
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /notifications/preferences [get]
func (c *NotificationController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	prefs, err := c.serviceCollection.Notification.GetPreferences(r.Context(), authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, prefs)
}

// UpdatePreferences updates the caller's push preferences
// @Summary Update notification preferences
// @Tags notifications
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /notifications/preferences [put]
func (c *NotificationController) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	var req services.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	prefs, err := c.serviceCollection.Notification.UpdatePreferences(r.Context(), authCtx.UserID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, prefs)
}

// ===============================
// DEVICE TOKENS
// ===============================

// RegisterDeviceToken registers a push token for the caller's device
// @Summary Register a device push token
// @Tags notifications
// @Accept json
// @Produce json
// @Success 201 {object} response.APIResponse
// @Router /devices/tokens [post]
func (c *NotificationController) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	var req services.RegisterDeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.serviceCollection.Notification.RegisterDeviceToken(r.Context(), authCtx.UserID, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, map[string]string{"status": "registered"})
}

// RemoveDeviceToken removes a push token, typically on logout
// @Summary Remove a device push token
// @Tags notifications
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /devices/tokens [delete]
func (c *NotificationController) RemoveDeviceToken(w http.ResponseWriter, r *http.Request) {
	authCtx := c.requireAuth(w, r)
	if authCtx == nil {
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.serviceCollection.Notification.RemoveDeviceToken(r.Context(), authCtx.UserID, req.Token); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]string{"status": "removed"})
}
