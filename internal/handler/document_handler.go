package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/response"
)

type documentCatalog interface {
	List(ctx context.Context) ([]models.Document, error)
}

// DocumentHandler lists requestable documents.
type DocumentHandler struct {
	catalog documentCatalog
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(catalog documentCatalog) *DocumentHandler {
	return &DocumentHandler{catalog: catalog}
}

// List godoc
// @Summary List requestable documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, docs)
}
