package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/core/services"
	"sogecredit/internal/pkg/response"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles own notification listing
// @Summary List notifications
// @Description List the current user's notifications, newest first
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	notifications, err := h.notificationService.ListByUser(c.Context(), actor.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	unread, err := h.notificationService.CountUnread(c.Context(), actor.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Notifications retrieved successfully", fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// UnreadCount handles the unread badge count
// @Summary Unread notification count
// @Description Count the current user's unread notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	unread, err := h.notificationService.CountUnread(c.Context(), actor.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Unread count retrieved successfully", fiber.Map{
		"unread_count": unread,
	})
}

// MarkAllRead handles marking every notification read
// @Summary Mark all notifications read
// @Description Mark every notification of the current user as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/mark-all-read [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notificationService.MarkAllRead(c.Context(), actor.ID); err != nil {
		return response.InternalServerError(c, "Failed to mark notifications read")
	}

	return response.Success(c, "All notifications marked as read", nil)
}
