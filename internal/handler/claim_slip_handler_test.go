package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
)

type claimSlipServiceMock struct {
	detail   *dto.ClaimSlipDetail
	body     []byte
	filename string
	err      error
	lastID   int64
}

func (m *claimSlipServiceMock) GetByRequest(ctx context.Context, caller *models.JWTClaims, requestID int64) (*dto.ClaimSlipDetail, error) {
	m.lastID = requestID
	return m.detail, m.err
}

func (m *claimSlipServiceMock) RenderPDF(ctx context.Context, caller *models.JWTClaims, requestID int64) ([]byte, string, error) {
	m.lastID = requestID
	return m.body, m.filename, m.err
}

type statusLogServiceMock struct {
	items     []dto.StatusLogDetail
	detail    *dto.StatusLogDetail
	err       error
	lastQuery dto.StatusLogQuery
	lastID    int64
}

func (m *statusLogServiceMock) List(ctx context.Context, caller *models.JWTClaims, query dto.StatusLogQuery) ([]dto.StatusLogDetail, error) {
	m.lastQuery = query
	return m.items, m.err
}

func (m *statusLogServiceMock) CorrectRemarks(ctx context.Context, id int64, payload dto.CorrectStatusLogPayload) (*dto.StatusLogDetail, error) {
	m.lastID = id
	return m.detail, m.err
}

type catalogMock struct {
	docs []models.Document
	err  error
}

func (m *catalogMock) List(ctx context.Context) ([]models.Document, error) {
	return m.docs, m.err
}

type pingerMock struct{ err error }

func (p pingerMock) PingContext(ctx context.Context) error { return p.err }

func TestClaimSlipHandlerRequiresRequestID(t *testing.T) {
	handler := NewClaimSlipHandler(&claimSlipServiceMock{})

	c, w := newTestContext(http.MethodGet, "/claim-slips", nil, student())

	handler.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requestId is required")
}

func TestClaimSlipHandlerGet(t *testing.T) {
	mockSvc := &claimSlipServiceMock{detail: &dto.ClaimSlipDetail{ClaimSlip: models.ClaimSlip{RequestID: 42, ClaimNumber: "REQ-2025-042"}}}
	handler := NewClaimSlipHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/claim-slips?requestId=42", nil, student())

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), mockSvc.lastID)
	assert.Contains(t, w.Body.String(), "REQ-2025-042")
}

func TestClaimSlipHandlerPDF(t *testing.T) {
	mockSvc := &claimSlipServiceMock{body: []byte("%PDF-1.3"), filename: "REQ-2025-042.pdf"}
	handler := NewClaimSlipHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/claim-slips/42/pdf", nil, student())
	c.Params = gin.Params{{Key: "requestId", Value: "42"}}

	handler.PDF(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="REQ-2025-042.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestStatusLogHandlerListFilters(t *testing.T) {
	mockSvc := &statusLogServiceMock{}
	handler := NewStatusLogHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/request-status-logs?requestId=42&userId=5", nil, registrar())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastQuery.RequestID)
	require.NotNil(t, mockSvc.lastQuery.UserID)
	assert.Equal(t, int64(42), *mockSvc.lastQuery.RequestID)
	assert.Equal(t, int64(5), *mockSvc.lastQuery.UserID)
}

func TestStatusLogHandlerCorrectInvalidBody(t *testing.T) {
	mockSvc := &statusLogServiceMock{}
	handler := NewStatusLogHandler(mockSvc)

	c, w := newTestContext(http.MethodPut, "/request-status-logs/3", []byte(`{"remarks":`), registrar())
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	handler.Correct(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.lastID)
}

func TestDocumentHandlerListFailure(t *testing.T) {
	handler := NewDocumentHandler(&catalogMock{err: errors.New("db down")})

	c, w := newTestContext(http.MethodGet, "/documents", nil, student())

	handler.List(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", nil, nil)
	NewMetricsHandler(nil, pingerMock{}).Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", nil, nil)
	NewMetricsHandler(nil, pingerMock{err: errors.New("refused")}).Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "refused")
}
