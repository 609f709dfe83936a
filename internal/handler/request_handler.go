package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/internal/service"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/response"
)

type requestService interface {
	Create(ctx context.Context, caller *models.JWTClaims, payload dto.CreateRequestPayload) (*dto.RequestDetail, error)
	ChangeStatus(ctx context.Context, requestID int64, payload dto.ChangeStatusPayload, actingRegistrarID int64) (*dto.RequestDetail, error)
	Get(ctx context.Context, caller *models.JWTClaims, id int64) (*dto.RequestDetail, error)
	List(ctx context.Context, caller *models.JWTClaims, query dto.RequestQuery) ([]dto.RequestDetail, error)
	Update(ctx context.Context, caller *models.JWTClaims, id int64, payload dto.UpdateRequestPayload) (*dto.RequestDetail, error)
	Delete(ctx context.Context, caller *models.JWTClaims, id int64) error
	Export(ctx context.Context, format string, query dto.RequestQuery) (*service.ExportFile, error)
}

// RequestHandler exposes document request endpoints.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler builds a new handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create godoc
// @Summary Submit a document request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var payload dto.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	detail, err := h.service.Create(c.Request.Context(), claimsFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List document requests
// @Description Students only see their own requests.
// @Tags Requests
// @Produce json
// @Param userId query int false "Owner filter"
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	query, err := requestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// Get godoc
// @Summary Get a document request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Update godoc
// @Summary Update copies, date needed or document of a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.UpdateRequestPayload true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.UpdateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	detail, err := h.service.Update(c.Request.Context(), claimsFromContext(c), id, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Delete godoc
// @Summary Delete a document request
// @Tags Requests
// @Param id path int true "Request ID"
// @Success 204
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
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

// ChangeStatus godoc
// @Summary Move a request to another status
// @Description Registrar only. Approval stamps dateReady and issues the claim slip.
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.ChangeStatusPayload true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/status [put]
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.ChangeStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	detail, err := h.service.ChangeStatus(c.Request.Context(), id, payload, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Export godoc
// @Summary Export requests as CSV or PDF
// @Tags Requests
// @Produce octet-stream
// @Param format query string false "csv (default) or pdf"
// @Param userId query int false "Owner filter"
// @Param status query string false "Comma separated statuses"
// @Success 200 {file} file
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	query, err := requestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Query("format"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func requestQuery(c *gin.Context) (dto.RequestQuery, error) {
	userID, err := optionalInt64Query(c, "userId")
	if err != nil {
		return dto.RequestQuery{}, err
	}
	statuses, err := statusQuery(c)
	if err != nil {
		return dto.RequestQuery{}, err
	}
	return dto.RequestQuery{UserID: userID, Status: statuses}, nil
}
