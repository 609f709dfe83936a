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

type statusLogService interface {
	List(ctx context.Context, caller *models.JWTClaims, query dto.StatusLogQuery) ([]dto.StatusLogDetail, error)
	CorrectRemarks(ctx context.Context, id int64, payload dto.CorrectStatusLogPayload) (*dto.StatusLogDetail, error)
}

// StatusLogHandler exposes the request status audit trail.
type StatusLogHandler struct {
	service statusLogService
}

// NewStatusLogHandler builds a new handler.
func NewStatusLogHandler(service statusLogService) *StatusLogHandler {
	return &StatusLogHandler{service: service}
}

// List godoc
// @Summary List status changes
// @Tags StatusLogs
// @Produce json
// @Param requestId query int false "Request filter"
// @Param userId query int false "Request owner filter"
// @Success 200 {object} response.Envelope
// @Router /request-status-logs [get]
func (h *StatusLogHandler) List(c *gin.Context) {
	requestID, err := optionalInt64Query(c, "requestId")
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := optionalInt64Query(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c), dto.StatusLogQuery{RequestID: requestID, UserID: userID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Correct godoc
// @Summary Correct the remarks of a status change
// @Tags StatusLogs
// @Accept json
// @Produce json
// @Param id path int true "Log ID"
// @Param payload body dto.CorrectStatusLogPayload true "Remarks"
// @Success 200 {object} response.Envelope
// @Router /request-status-logs/{id} [put]
func (h *StatusLogHandler) Correct(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.CorrectStatusLogPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid remarks payload"))
		return
	}
	detail, err := h.service.CorrectRemarks(c.Request.Context(), id, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}
