package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, caller *models.JWTClaims, userID int64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, caller *models.JWTClaims, userID int64) (int, error)
	MarkRead(ctx context.Context, caller *models.JWTClaims, id int64) (*models.Notification, error)
	Delete(ctx context.Context, caller *models.JWTClaims, id int64) error
	DeleteAll(ctx context.Context, caller *models.JWTClaims, userID int64) (int64, error)
}

// NotificationHandler exposes the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds a new handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// targetUser resolves whose inbox is addressed: the caller by default, or
// ?userId for registrars.
func targetUser(c *gin.Context) (*models.JWTClaims, int64, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	userID, err := optionalInt64Query(c, "userId")
	if err != nil {
		return nil, 0, err
	}
	if userID == nil {
		return claims, claims.UserID, nil
	}
	return claims, *userID, nil
}

// List godoc
// @Summary List notifications, newest first
// @Tags Notifications
// @Produce json
// @Param userId query int false "Inbox owner (registrars only)"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims, userID, err := targetUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), claims, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims, userID, err := targetUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), claims, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UnreadCount{Unread: count})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Param id path int true "Notification ID"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Clear an inbox
// @Tags Notifications
// @Produce json
// @Param userId query int false "Inbox owner (registrars only)"
// @Success 200 {object} response.Envelope
// @Router /notifications [delete]
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	claims, userID, err := targetUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	removed, err := h.service.DeleteAll(c.Request.Context(), claims, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": removed})
}
