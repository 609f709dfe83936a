package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/response"
)

type claimSlipService interface {
	GetByRequest(ctx context.Context, caller *models.JWTClaims, requestID int64) (*dto.ClaimSlipDetail, error)
	RenderPDF(ctx context.Context, caller *models.JWTClaims, requestID int64) ([]byte, string, error)
}

// ClaimSlipHandler serves issued claim slips.
type ClaimSlipHandler struct {
	service claimSlipService
}

// NewClaimSlipHandler builds a new handler.
func NewClaimSlipHandler(service claimSlipService) *ClaimSlipHandler {
	return &ClaimSlipHandler{service: service}
}

// Get godoc
// @Summary Get the claim slip of a request
// @Tags ClaimSlips
// @Produce json
// @Param requestId query int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /claim-slips [get]
func (h *ClaimSlipHandler) Get(c *gin.Context) {
	requestID, err := optionalInt64Query(c, "requestId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if requestID == nil {
		response.Error(c, appErrors.InvalidArgument("requestId is required"))
		return
	}
	detail, err := h.service.GetByRequest(c.Request.Context(), claimsFromContext(c), *requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// PDF godoc
// @Summary Download the printable claim slip
// @Tags ClaimSlips
// @Produce application/pdf
// @Param requestId path int true "Request ID"
// @Success 200 {file} file
// @Router /claim-slips/{requestId}/pdf [get]
func (h *ClaimSlipHandler) PDF(c *gin.Context) {
	requestID, err := int64Param(c, "requestId")
	if err != nil {
		response.Error(c, err)
		return
	}
	body, filename, err := h.service.RenderPDF(c.Request.Context(), claimsFromContext(c), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "application/pdf", body)
}
